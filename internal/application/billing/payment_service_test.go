package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRegistration(t *testing.T) *membership.Registration {
	t.Helper()
	reg, err := membership.NewRegistration("REG-2026-0021", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	reg.Status = membership.RegistrationStatusPendingPayment
	reg.Amount = decimal.NewFromInt(350)
	reg.Currency = "AUD"
	reg.AccountCode = "200"
	return reg
}

func TestCreatePaymentIntent(t *testing.T) {
	ctx := context.Background()
	reg := pendingRegistration(t)
	paymentRepo := newMemPaymentRepo()
	gateway := &fakeStripeGateway{}
	svc := NewPaymentService(paymentRepo, newStubRegistrationRepo(reg), gateway)

	resp, err := svc.CreatePaymentIntent(ctx, CreatePaymentIntentRequest{RegistrationID: reg.ID})
	require.NoError(t, err)

	assert.Equal(t, "pi_test_1", resp.StripePaymentIntentID)
	assert.NotEmpty(t, resp.ClientSecret)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(350)))

	payment, err := paymentRepo.FindByStripePaymentIntent(ctx, "pi_test_1")
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPending, payment.Status)
	assert.Equal(t, reg.ID, payment.RegistrationID)

	require.Len(t, gateway.intents, 1)
	assert.Equal(t, reg.ID.String(), gateway.intents[0]["registration_id"])
	assert.Equal(t, reg.MemberID.String(), gateway.intents[0]["member_id"])
}

func TestCreatePaymentIntentRequiresPendingPayment(t *testing.T) {
	ctx := context.Background()
	reg := pendingRegistration(t)
	reg.Status = membership.RegistrationStatusDraft
	svc := NewPaymentService(newMemPaymentRepo(), newStubRegistrationRepo(reg), &fakeStripeGateway{})

	_, err := svc.CreatePaymentIntent(ctx, CreatePaymentIntentRequest{RegistrationID: reg.ID})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestCreatePaymentIntentRejectsPlanRegistrations(t *testing.T) {
	ctx := context.Background()
	reg := pendingRegistration(t)
	reg.OnPaymentPlan = true
	svc := NewPaymentService(newMemPaymentRepo(), newStubRegistrationRepo(reg), &fakeStripeGateway{})

	_, err := svc.CreatePaymentIntent(ctx, CreatePaymentIntentRequest{RegistrationID: reg.ID})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func settledPayment(t *testing.T, reg *membership.Registration) *billing.Payment {
	t.Helper()
	payment, err := billing.NewPayment(reg.ID, reg.MemberID, reg.Amount, reg.Currency, "pi_settled_1")
	require.NoError(t, err)
	require.NoError(t, payment.MarkSucceeded("ch_1", time.Now()))
	return payment
}

func TestCreateRefund(t *testing.T) {
	ctx := context.Background()
	reg := pendingRegistration(t)
	payment := settledPayment(t, reg)
	refundRepo := newMemRefundRepo()
	gateway := &fakeStripeGateway{}
	svc := NewRefundService(refundRepo, newMemPaymentRepo(payment), gateway)

	resp, err := svc.CreateRefund(ctx, CreateRefundRequest{
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(100),
		Reason:    "withdrew before round one",
	})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "re_test_1", resp.StripeRefundID)

	// The payment itself is only adjusted once the webhook confirms
	assert.Equal(t, billing.PaymentStatusSucceeded, payment.Status)

	saved, err := refundRepo.FindByStripeRefundID(ctx, "re_test_1")
	require.NoError(t, err)
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(100)))
}

func TestCreateRefundRejectsUnsettledPayment(t *testing.T) {
	ctx := context.Background()
	reg := pendingRegistration(t)
	payment, err := billing.NewPayment(reg.ID, reg.MemberID, reg.Amount, reg.Currency, "pi_pending_1")
	require.NoError(t, err)
	svc := NewRefundService(newMemRefundRepo(), newMemPaymentRepo(payment), &fakeStripeGateway{})

	_, err = svc.CreateRefund(ctx, CreateRefundRequest{
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(100),
		Reason:    "withdrew",
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestCreateRefundRejectsOverRefund(t *testing.T) {
	ctx := context.Background()
	reg := pendingRegistration(t)
	payment := settledPayment(t, reg)
	svc := NewRefundService(newMemRefundRepo(), newMemPaymentRepo(payment), &fakeStripeGateway{})

	_, err := svc.CreateRefund(ctx, CreateRefundRequest{
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(500),
		Reason:    "withdrew",
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
}
