package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type webhookFixture struct {
	svc         *WebhookService
	verifier    *fakeVerifier
	paymentRepo *memPaymentRepo
	refundRepo  *memRefundRepo
	planRepo    *memPlanRepo
	regRepo     *stubRegistrationRepo
	idempotency *mapIdempotencyStore

	registration *membership.Registration
	payment      *billing.Payment
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	reg, err := membership.NewRegistration("REG-2026-0007", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	reg.Status = membership.RegistrationStatusPendingPayment
	reg.Amount = decimal.NewFromInt(350)
	reg.Currency = "AUD"
	reg.AccountCode = "200"

	payment, err := billing.NewPayment(reg.ID, reg.MemberID, reg.Amount, "AUD", "pi_test_1")
	require.NoError(t, err)

	f := &webhookFixture{
		verifier:     &fakeVerifier{},
		paymentRepo:  newMemPaymentRepo(payment),
		refundRepo:   newMemRefundRepo(),
		planRepo:     newMemPlanRepo(),
		regRepo:      newStubRegistrationRepo(reg),
		idempotency:  newMapIdempotencyStore(),
		registration: reg,
		payment:      payment,
	}
	f.svc = NewWebhookService(WebhookServiceConfig{
		Verifier:         f.verifier,
		PaymentRepo:      f.paymentRepo,
		RefundRepo:       f.refundRepo,
		PlanRepo:         f.planRepo,
		RegistrationRepo: f.regRepo,
		Idempotency:      f.idempotency,
		Logger:           zap.NewNop(),
	})
	return f
}

func (f *webhookFixture) process(t *testing.T, event *billing.WebhookEvent) *WebhookResult {
	t.Helper()
	f.verifier.event = event
	result, err := f.svc.Process(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	return result
}

func TestWebhookServiceRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	f.verifier.err = errors.New("signature mismatch")

	result, err := f.svc.Process(context.Background(), []byte("{}"), "bad")
	require.Error(t, err)
	assert.Nil(t, result)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SIGNATURE", domainErr.Code)
}

func TestWebhookServiceDeduplicatesByEventID(t *testing.T) {
	f := newWebhookFixture(t)
	event := &billing.WebhookEvent{
		ID:              "evt_1",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_test_1",
		ChargeID:        "ch_1",
		OccurredAt:      time.Now(),
	}

	first := f.process(t, event)
	assert.True(t, first.Success)
	assert.False(t, first.AlreadyProcessed)

	replay := f.process(t, event)
	assert.True(t, replay.Success)
	assert.True(t, replay.AlreadyProcessed)
}

func TestWebhookServicePaymentSucceeded(t *testing.T) {
	f := newWebhookFixture(t)
	paidAt := time.Now()
	f.process(t, &billing.WebhookEvent{
		ID:              "evt_2",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_test_1",
		ChargeID:        "ch_1",
		OccurredAt:      paidAt,
	})

	assert.Equal(t, billing.PaymentStatusSucceeded, f.payment.Status)
	assert.Equal(t, "ch_1", f.payment.StripeChargeID)

	assert.Equal(t, membership.RegistrationStatusPaid, f.registration.Status)
	require.NotNil(t, f.registration.PaymentID)
	assert.Equal(t, f.payment.ID, *f.registration.PaymentID)
}

func TestWebhookServiceUnknownPaymentIntentIsAcked(t *testing.T) {
	f := newWebhookFixture(t)
	result := f.process(t, &billing.WebhookEvent{
		ID:              "evt_3",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_unknown",
	})

	// Acked so Stripe stops retrying; nothing to settle on our side
	assert.True(t, result.Success)
	assert.Equal(t, billing.PaymentStatusPending, f.payment.Status)
}

func TestWebhookServicePaymentFailed(t *testing.T) {
	f := newWebhookFixture(t)
	f.process(t, &billing.WebhookEvent{
		ID:              "evt_4",
		Type:            billing.WebhookPaymentFailed,
		PaymentIntentID: "pi_test_1",
		FailureMessage:  "card_declined",
	})

	assert.Equal(t, billing.PaymentStatusFailed, f.payment.Status)
	assert.Equal(t, "card_declined", f.payment.FailureReason)
	assert.Equal(t, membership.RegistrationStatusPendingPayment, f.registration.Status)
}

func TestWebhookServiceFailureAfterSettleIsIgnored(t *testing.T) {
	f := newWebhookFixture(t)
	f.process(t, &billing.WebhookEvent{
		ID:              "evt_5",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_test_1",
		ChargeID:        "ch_1",
		OccurredAt:      time.Now(),
	})

	result := f.process(t, &billing.WebhookEvent{
		ID:              "evt_6",
		Type:            billing.WebhookPaymentFailed,
		PaymentIntentID: "pi_test_1",
		FailureMessage:  "card_declined",
	})

	assert.True(t, result.Success)
	assert.Equal(t, billing.PaymentStatusSucceeded, f.payment.Status)
}

func TestWebhookServiceUnhandledEventTypeIsAcked(t *testing.T) {
	f := newWebhookFixture(t)
	result := f.process(t, &billing.WebhookEvent{
		ID:   "evt_7",
		Type: "customer.created",
	})
	assert.True(t, result.Success)
}

func TestWebhookServiceInstallmentSucceeded(t *testing.T) {
	f := newWebhookFixture(t)

	plan, err := billing.NewPaymentPlan(f.registration.ID, f.registration.MemberID,
		decimal.NewFromInt(350), "AUD", 2, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	require.NoError(t, f.planRepo.Save(context.Background(), plan))

	first := plan.Installments[0]
	firstPayment, err := billing.NewPayment(f.registration.ID, f.registration.MemberID,
		first.Amount, "AUD", "pi_inst_1")
	require.NoError(t, err)
	require.NoError(t, f.paymentRepo.Save(context.Background(), firstPayment))

	f.process(t, &billing.WebhookEvent{
		ID:              "evt_8",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_inst_1",
		ChargeID:        "ch_inst_1",
		Metadata:        map[string]string{"installment_id": first.ID.String()},
		OccurredAt:      time.Now(),
	})

	assert.Equal(t, billing.InstallmentStatusPaid, plan.Installments[0].Status)
	assert.Equal(t, billing.PaymentPlanStatusActive, plan.Status)
	// Registration settles only when the plan completes
	assert.Equal(t, membership.RegistrationStatusPendingPayment, f.registration.Status)

	second := plan.Installments[1]
	secondPayment, err := billing.NewPayment(f.registration.ID, f.registration.MemberID,
		second.Amount, "AUD", "pi_inst_2")
	require.NoError(t, err)
	require.NoError(t, f.paymentRepo.Save(context.Background(), secondPayment))

	f.process(t, &billing.WebhookEvent{
		ID:              "evt_9",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_inst_2",
		ChargeID:        "ch_inst_2",
		Metadata:        map[string]string{"installment_id": second.ID.String()},
		OccurredAt:      time.Now(),
	})

	assert.Equal(t, billing.PaymentPlanStatusCompleted, plan.Status)
	assert.Equal(t, membership.RegistrationStatusPaid, f.registration.Status)
}

func TestWebhookServiceChargeRefunded(t *testing.T) {
	f := newWebhookFixture(t)
	f.process(t, &billing.WebhookEvent{
		ID:              "evt_10",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_test_1",
		ChargeID:        "ch_1",
		OccurredAt:      time.Now(),
	})

	refund, err := billing.NewRefund(f.payment, decimal.NewFromInt(100), "requested by member")
	require.NoError(t, err)
	require.NoError(t, refund.RecordStripeRefund("re_1"))
	require.NoError(t, f.refundRepo.Save(context.Background(), refund))

	f.process(t, &billing.WebhookEvent{
		ID:              "evt_11",
		Type:            billing.WebhookChargeRefunded,
		PaymentIntentID: "pi_test_1",
		RefundID:        "re_1",
		Amount:          decimal.NewFromInt(100),
		OccurredAt:      time.Now(),
	})

	assert.Equal(t, billing.RefundStatusSucceeded, refund.Status)
	assert.Equal(t, billing.PaymentStatusPartiallyRefunded, f.payment.Status)
	assert.True(t, f.payment.RefundedAmount.Equal(decimal.NewFromInt(100)))
}

func TestWebhookServiceDashboardRefundCreatesRow(t *testing.T) {
	f := newWebhookFixture(t)
	f.process(t, &billing.WebhookEvent{
		ID:              "evt_12",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_test_1",
		ChargeID:        "ch_1",
		OccurredAt:      time.Now(),
	})

	// Refund issued straight from the Stripe dashboard, no pending row here
	f.process(t, &billing.WebhookEvent{
		ID:              "evt_13",
		Type:            billing.WebhookChargeRefunded,
		PaymentIntentID: "pi_test_1",
		RefundID:        "re_dash_1",
		Amount:          decimal.NewFromInt(350),
		OccurredAt:      time.Now(),
	})

	created, err := f.refundRepo.FindByStripeRefundID(context.Background(), "re_dash_1")
	require.NoError(t, err)
	assert.Equal(t, billing.RefundStatusSucceeded, created.Status)
	assert.Equal(t, billing.PaymentStatusRefunded, f.payment.Status)
}

func TestWebhookServiceConcurrentDeliveriesProcessOnce(t *testing.T) {
	f := newWebhookFixture(t)
	f.verifier.event = &billing.WebhookEvent{
		ID:              "evt_14",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_test_1",
		ChargeID:        "ch_1",
		OccurredAt:      time.Now(),
	}

	const deliveries = 8
	results := make([]*WebhookResult, deliveries)
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Process(context.Background(), []byte("{}"), "sig")
		}(i)
	}
	wg.Wait()

	// The event id claim is atomic, so exactly one delivery does the work
	// and the rest are acknowledged as replays
	var processed int
	for i, result := range results {
		require.NoError(t, errs[i])
		assert.True(t, result.Success)
		if !result.AlreadyProcessed {
			processed++
		}
	}
	assert.Equal(t, 1, processed)
	assert.Equal(t, billing.PaymentStatusSucceeded, f.payment.Status)
}

func TestWebhookServiceFailedEventCanBeRedelivered(t *testing.T) {
	f := newWebhookFixture(t)

	plan, err := billing.NewPaymentPlan(f.registration.ID, f.registration.MemberID,
		decimal.NewFromInt(350), "AUD", 2, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	installment := plan.Installments[0]

	f.verifier.event = &billing.WebhookEvent{
		ID:              "evt_15",
		Type:            billing.WebhookPaymentSucceeded,
		PaymentIntentID: "pi_test_1",
		ChargeID:        "ch_1",
		Metadata:        map[string]string{"installment_id": installment.ID.String()},
		OccurredAt:      time.Now(),
	}

	// The plan is not saved yet, so the first delivery fails mid-way
	_, err = f.svc.Process(context.Background(), []byte("{}"), "sig")
	require.Error(t, err)

	// The failure released the event id, so Stripe's retry of the same
	// delivery is processed instead of being swallowed as a replay
	require.NoError(t, f.planRepo.Save(context.Background(), plan))
	result, err := f.svc.Process(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, billing.InstallmentStatusPaid, plan.Installments[0].Status)
}
