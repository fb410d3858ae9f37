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

func newSucceededPayment(t *testing.T) *billing.Payment {
	t.Helper()
	p, err := billing.NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(450), "AUD", "pi_test_123")
	require.NoError(t, err)
	require.NoError(t, p.MarkSucceeded("ch_test_123", time.Now()))
	return p
}

func TestNewPayment(t *testing.T) {
	tests := []struct {
		name           string
		registrationID uuid.UUID
		memberID       uuid.UUID
		amount         decimal.Decimal
		currency       string
		intentID       string
		expectedErr    string
	}{
		{
			name:           "valid payment",
			registrationID: uuid.New(),
			memberID:       uuid.New(),
			amount:         decimal.NewFromInt(450),
			currency:       "AUD",
			intentID:       "pi_test_123",
		},
		{
			name:           "nil registration",
			registrationID: uuid.Nil,
			memberID:       uuid.New(),
			amount:         decimal.NewFromInt(450),
			currency:       "AUD",
			intentID:       "pi_test_123",
			expectedErr:    "Registration ID cannot be empty",
		},
		{
			name:           "zero amount",
			registrationID: uuid.New(),
			memberID:       uuid.New(),
			amount:         decimal.Zero,
			currency:       "AUD",
			intentID:       "pi_test_123",
			expectedErr:    "Payment amount must be positive",
		},
		{
			name:           "missing payment intent",
			registrationID: uuid.New(),
			memberID:       uuid.New(),
			amount:         decimal.NewFromInt(450),
			currency:       "AUD",
			intentID:       "",
			expectedErr:    "Stripe payment intent ID cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := billing.NewPayment(tt.registrationID, tt.memberID, tt.amount, tt.currency, tt.intentID)
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, billing.PaymentStatusPending, p.Status)
			assert.True(t, p.RefundedAmount.IsZero())
		})
	}
}

func TestPaymentMarkSucceededIdempotent(t *testing.T) {
	p := newSucceededPayment(t)
	assert.True(t, p.IsSucceeded())
	assert.Len(t, p.GetDomainEvents(), 1)

	// Replay is a no-op
	require.NoError(t, p.MarkSucceeded("ch_test_123", time.Now()))
	assert.Len(t, p.GetDomainEvents(), 1)
}

func TestPaymentFailedThenSucceeded(t *testing.T) {
	p, err := billing.NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(450), "AUD", "pi_test_456")
	require.NoError(t, err)

	require.NoError(t, p.MarkFailed("card_declined"))
	assert.Equal(t, billing.PaymentStatusFailed, p.Status)
	assert.Equal(t, "card_declined", p.FailureReason)

	// A later retry on the same intent can still succeed
	require.NoError(t, p.MarkSucceeded("ch_test_456", time.Now()))
	assert.True(t, p.IsSucceeded())
	assert.Empty(t, p.FailureReason)
}

func TestPaymentApplyRefund(t *testing.T) {
	p := newSucceededPayment(t)

	require.NoError(t, p.ApplyRefund(decimal.NewFromInt(100)))
	assert.Equal(t, billing.PaymentStatusPartiallyRefunded, p.Status)
	assert.True(t, p.RefundableAmount().Equal(decimal.NewFromInt(350)))

	require.NoError(t, p.ApplyRefund(decimal.NewFromInt(350)))
	assert.Equal(t, billing.PaymentStatusRefunded, p.Status)
	assert.True(t, p.RefundableAmount().IsZero())

	assert.Error(t, p.ApplyRefund(decimal.NewFromInt(1)))
}

func TestPaymentRefundOverBalance(t *testing.T) {
	p := newSucceededPayment(t)
	err := p.ApplyRefund(decimal.NewFromInt(500))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds refundable balance")
}

func TestPaymentCannotRefundPending(t *testing.T) {
	p, err := billing.NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(450), "AUD", "pi_test_789")
	require.NoError(t, err)
	assert.Error(t, p.ApplyRefund(decimal.NewFromInt(10)))
	assert.True(t, p.RefundableAmount().IsZero())
}
