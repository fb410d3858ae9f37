package billing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T, total decimal.Decimal, count int) *billing.PaymentPlan {
	t.Helper()
	plan, err := billing.NewPaymentPlan(uuid.New(), uuid.New(), total, "AUD", count, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	return plan
}

func TestNewPaymentPlanSplitsExactly(t *testing.T) {
	tests := []struct {
		name  string
		total decimal.Decimal
		count int
	}{
		{"even split", decimal.NewFromInt(450), 3},
		{"remainder on first installment", decimal.NewFromInt(100), 3},
		{"cents total", decimal.RequireFromString("449.99"), 4},
		{"max installments", decimal.NewFromInt(600), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := newTestPlan(t, tt.total, tt.count)
			require.Len(t, plan.Installments, tt.count)

			sum := decimal.Zero
			for i, inst := range plan.Installments {
				sum = sum.Add(inst.Amount)
				assert.Equal(t, i+1, inst.Sequence)
				assert.Equal(t, billing.InstallmentStatusScheduled, inst.Status)
				if i > 0 {
					// No installment may be larger than the first
					assert.True(t, inst.Amount.LessThanOrEqual(plan.Installments[0].Amount))
				}
			}
			assert.True(t, sum.Equal(tt.total), "installments sum %s, want %s", sum, tt.total)
		})
	}
}

func TestNewPaymentPlanValidation(t *testing.T) {
	_, err := billing.NewPaymentPlan(uuid.New(), uuid.New(), decimal.NewFromInt(450), "AUD", 1, time.Now())
	assert.Error(t, err)

	_, err = billing.NewPaymentPlan(uuid.New(), uuid.New(), decimal.NewFromInt(450), "AUD", 13, time.Now())
	assert.Error(t, err)

	_, err = billing.NewPaymentPlan(uuid.New(), uuid.New(), decimal.Zero, "AUD", 3, time.Now())
	assert.Error(t, err)

	_, err = billing.NewPaymentPlan(uuid.Nil, uuid.New(), decimal.NewFromInt(450), "AUD", 3, time.Now())
	assert.Error(t, err)
}

func TestPaymentPlanMonthlyDueDates(t *testing.T) {
	first := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	plan, err := billing.NewPaymentPlan(uuid.New(), uuid.New(), decimal.NewFromInt(300), "AUD", 3, first)
	require.NoError(t, err)

	assert.Equal(t, first, plan.Installments[0].DueDate)
	assert.Equal(t, first.AddDate(0, 1, 0), plan.Installments[1].DueDate)
	assert.Equal(t, first.AddDate(0, 2, 0), plan.Installments[2].DueDate)
}

func TestPaymentPlanInstallmentLifecycle(t *testing.T) {
	plan := newTestPlan(t, decimal.NewFromInt(300), 3)
	paymentID := uuid.New()
	first := plan.Installments[0].ID

	require.NoError(t, plan.MarkInstallmentPaid(first, paymentID, time.Now()))
	assert.Equal(t, billing.InstallmentStatusPaid, plan.Installments[0].Status)
	assert.Equal(t, billing.PaymentPlanStatusActive, plan.Status)
	assert.True(t, plan.OutstandingAmount().Equal(decimal.NewFromInt(200)))

	// Replay with the same payment is a no-op, a different payment is rejected
	require.NoError(t, plan.MarkInstallmentPaid(first, paymentID, time.Now()))
	assert.Error(t, plan.MarkInstallmentPaid(first, uuid.New(), time.Now()))

	require.NoError(t, plan.MarkInstallmentPaid(plan.Installments[1].ID, uuid.New(), time.Now()))
	require.NoError(t, plan.MarkInstallmentPaid(plan.Installments[2].ID, uuid.New(), time.Now()))

	assert.Equal(t, billing.PaymentPlanStatusCompleted, plan.Status)
	assert.True(t, plan.OutstandingAmount().IsZero())

	events := plan.GetDomainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, "PaymentPlanCompleted", events[len(events)-1].EventType())
}

func TestPaymentPlanInstallmentFailure(t *testing.T) {
	plan := newTestPlan(t, decimal.NewFromInt(300), 3)
	first := plan.Installments[0].ID

	require.NoError(t, plan.MarkInstallmentFailed(first, "card_declined"))
	assert.Equal(t, billing.InstallmentStatusFailed, plan.Installments[0].Status)

	// A failed installment can still be collected later
	require.NoError(t, plan.MarkInstallmentPaid(first, uuid.New(), time.Now()))
	assert.Equal(t, billing.InstallmentStatusPaid, plan.Installments[0].Status)
}

func TestPaymentPlanCancel(t *testing.T) {
	plan := newTestPlan(t, decimal.NewFromInt(300), 3)
	require.NoError(t, plan.MarkInstallmentPaid(plan.Installments[0].ID, uuid.New(), time.Now()))

	require.NoError(t, plan.Cancel())
	assert.Equal(t, billing.PaymentPlanStatusCancelled, plan.Status)
	assert.Equal(t, billing.InstallmentStatusPaid, plan.Installments[0].Status)
	assert.Equal(t, billing.InstallmentStatusCancelled, plan.Installments[1].Status)
	assert.Equal(t, billing.InstallmentStatusCancelled, plan.Installments[2].Status)

	assert.Error(t, plan.Cancel())
	assert.Error(t, plan.MarkInstallmentPaid(plan.Installments[1].ID, uuid.New(), time.Now()))
}

func TestPaymentPlanDueInstallments(t *testing.T) {
	first := time.Now().AddDate(0, -1, 0)
	plan, err := billing.NewPaymentPlan(uuid.New(), uuid.New(), decimal.NewFromInt(300), "AUD", 3, first)
	require.NoError(t, err)

	due := plan.DueInstallments(time.Now())
	require.Len(t, due, 2)
	assert.Equal(t, 1, due[0].Sequence)
	assert.Equal(t, 2, due[1].Sequence)
}

func TestRefundLifecycle(t *testing.T) {
	p := newSucceededPayment(t)

	refund, err := billing.NewRefund(p, decimal.NewFromInt(100), "injury withdrawal")
	require.NoError(t, err)
	assert.Equal(t, billing.RefundStatusPending, refund.Status)
	assert.Equal(t, p.ID, refund.PaymentID)

	require.NoError(t, refund.Complete("re_test_123", time.Now()))
	assert.Equal(t, billing.RefundStatusSucceeded, refund.Status)
	require.Len(t, refund.GetDomainEvents(), 1)
	assert.Equal(t, "RefundCompleted", refund.GetDomainEvents()[0].EventType())

	// Idempotent
	require.NoError(t, refund.Complete("re_test_123", time.Now()))
	assert.Len(t, refund.GetDomainEvents(), 1)

	assert.Error(t, refund.Fail("too late"))
}

func TestNewRefundValidation(t *testing.T) {
	p := newSucceededPayment(t)

	_, err := billing.NewRefund(nil, decimal.NewFromInt(10), "x")
	assert.Error(t, err)

	_, err = billing.NewRefund(p, decimal.Zero, "x")
	assert.Error(t, err)

	_, err = billing.NewRefund(p, decimal.NewFromInt(1000), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds refundable balance")

	_, err = billing.NewRefund(p, decimal.NewFromInt(10), "")
	assert.Error(t, err)
}
