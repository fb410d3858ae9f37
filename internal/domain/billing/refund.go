package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RefundStatus represents the status of a refund
type RefundStatus string

const (
	// RefundStatusPending indicates the refund was requested from Stripe
	RefundStatusPending RefundStatus = "PENDING"
	// RefundStatusSucceeded indicates Stripe confirmed the refund
	RefundStatusSucceeded RefundStatus = "SUCCEEDED"
	// RefundStatusFailed indicates the refund failed
	RefundStatusFailed RefundStatus = "FAILED"
)

// IsValid checks if the status is a valid RefundStatus
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusSucceeded, RefundStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of RefundStatus
func (s RefundStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the refund is in a terminal state
func (s RefundStatus) IsTerminal() bool {
	return s == RefundStatusSucceeded || s == RefundStatusFailed
}

// Refund represents a refund issued against a payment. A completed refund
// triggers a credit note staging row toward Xero.
type Refund struct {
	shared.BaseAggregateRoot

	PaymentID      uuid.UUID       `json:"payment_id"`
	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Reason         string          `json:"reason"`
	Status         RefundStatus    `json:"status"`

	StripeRefundID string `json:"stripe_refund_id"`
	FailureReason  string `json:"failure_reason"`

	CompletedAt *time.Time `json:"completed_at"`
}

// NewRefund creates a pending refund for a payment
func NewRefund(payment *Payment, amount decimal.Decimal, reason string) (*Refund, error) {
	if payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment cannot be nil")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if amount.GreaterThan(payment.RefundableAmount()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount exceeds refundable balance")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Refund reason cannot be empty")
	}

	return &Refund{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentID:         payment.ID,
		RegistrationID:    payment.RegistrationID,
		MemberID:          payment.MemberID,
		Amount:            amount,
		Currency:          payment.Currency,
		Reason:            reason,
		Status:            RefundStatusPending,
	}, nil
}

// RecordStripeRefund stores the Stripe refund id issued for this refund so
// the charge.refunded webhook can be traced back to it
func (r *Refund) RecordStripeRefund(stripeRefundID string) error {
	if stripeRefundID == "" {
		return shared.NewDomainError("INVALID_REFUND_ID", "Stripe refund ID cannot be empty")
	}
	if r.Status != RefundStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record Stripe refund in %s status", r.Status))
	}
	r.StripeRefundID = stripeRefundID
	r.UpdatedAt = time.Now()
	return nil
}

// Complete marks the refund as confirmed by Stripe
func (r *Refund) Complete(stripeRefundID string, completedAt time.Time) error {
	if r.Status == RefundStatusSucceeded {
		return nil
	}
	if r.Status != RefundStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete refund in %s status", r.Status))
	}
	if stripeRefundID == "" {
		return shared.NewDomainError("INVALID_REFUND_ID", "Stripe refund ID cannot be empty")
	}

	r.Status = RefundStatusSucceeded
	r.StripeRefundID = stripeRefundID
	r.CompletedAt = &completedAt
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRefundCompletedEvent(r))

	return nil
}

// Fail marks the refund as failed
func (r *Refund) Fail(reason string) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail refund in %s status", r.Status))
	}
	r.Status = RefundStatusFailed
	r.FailureReason = reason
	r.UpdatedAt = time.Now()
	return nil
}
