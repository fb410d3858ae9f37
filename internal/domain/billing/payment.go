package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	// PaymentStatusPending indicates the payment intent was created but not yet settled
	PaymentStatusPending PaymentStatus = "PENDING"
	// PaymentStatusSucceeded indicates the charge succeeded
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	// PaymentStatusFailed indicates the charge failed
	PaymentStatusFailed PaymentStatus = "FAILED"
	// PaymentStatusRefunded indicates the full amount was refunded
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	// PaymentStatusPartiallyRefunded indicates part of the amount was refunded
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Payment represents a Stripe payment against a registration. It is
// created pending when the payment intent is issued and settled by the
// webhook processor.
type Payment struct {
	shared.BaseAggregateRoot

	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         PaymentStatus   `json:"status"`

	StripePaymentIntentID string `json:"stripe_payment_intent_id"`
	StripeChargeID        string `json:"stripe_charge_id"`
	FailureReason         string `json:"failure_reason"`

	RefundedAmount decimal.Decimal `json:"refunded_amount"`

	PaidAt   *time.Time `json:"paid_at"`
	FailedAt *time.Time `json:"failed_at"`
}

// NewPayment creates a pending payment for a registration
func NewPayment(registrationID, memberID uuid.UUID, amount decimal.Decimal, currency, stripePaymentIntentID string) (*Payment, error) {
	if registrationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REGISTRATION", "Registration ID cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	if stripePaymentIntentID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_INTENT", "Stripe payment intent ID cannot be empty")
	}

	return &Payment{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		RegistrationID:        registrationID,
		MemberID:              memberID,
		Amount:                amount,
		Currency:              currency,
		Status:                PaymentStatusPending,
		StripePaymentIntentID: stripePaymentIntentID,
		RefundedAmount:        decimal.Zero,
	}, nil
}

// MarkSucceeded settles the payment from a payment_intent.succeeded webhook.
// Idempotent so webhook replays are harmless.
func (p *Payment) MarkSucceeded(stripeChargeID string, paidAt time.Time) error {
	if p.Status == PaymentStatusSucceeded {
		return nil
	}
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark payment succeeded in %s status", p.Status))
	}

	p.Status = PaymentStatusSucceeded
	p.StripeChargeID = stripeChargeID
	p.FailureReason = ""
	p.PaidAt = &paidAt
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewPaymentSucceededEvent(p))

	return nil
}

// MarkFailed records a payment_intent.payment_failed webhook
func (p *Payment) MarkFailed(reason string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark payment failed in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.FailedAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPaymentFailedEvent(p))

	return nil
}

// ApplyRefund records a refunded amount against the payment
func (p *Payment) ApplyRefund(amount decimal.Decimal) error {
	if p.Status != PaymentStatusSucceeded && p.Status != PaymentStatusPartiallyRefunded {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund payment in %s status", p.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}

	remaining := p.Amount.Sub(p.RefundedAmount)
	if amount.GreaterThan(remaining) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount exceeds refundable balance")
	}

	p.RefundedAmount = p.RefundedAmount.Add(amount)
	if p.RefundedAmount.Equal(p.Amount) {
		p.Status = PaymentStatusRefunded
	} else {
		p.Status = PaymentStatusPartiallyRefunded
	}
	p.UpdatedAt = time.Now()

	return nil
}

// RefundableAmount returns how much of the payment can still be refunded
func (p *Payment) RefundableAmount() decimal.Decimal {
	if p.Status != PaymentStatusSucceeded && p.Status != PaymentStatusPartiallyRefunded {
		return decimal.Zero
	}
	return p.Amount.Sub(p.RefundedAmount)
}

// IsSucceeded returns true if the payment settled
func (p *Payment) IsSucceeded() bool {
	return p.Status == PaymentStatusSucceeded
}
