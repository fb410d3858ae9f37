package accounting

import (
	"fmt"

	"github.com/google/uuid"
)

// StagingMetadata carries the correlation keys linking a staging row back
// to the records that produced it. It is stored as a JSON blob on the row
// so a failed sync can be diagnosed without joining across tables.
type StagingMetadata struct {
	PaymentID             *uuid.UUID `json:"payment_id,omitempty"`
	RefundID              *uuid.UUID `json:"refund_id,omitempty"`
	RegistrationID        *uuid.UUID `json:"registration_id,omitempty"`
	MemberID              *uuid.UUID `json:"member_id,omitempty"`
	SeasonID              *uuid.UUID `json:"season_id,omitempty"`
	InstallmentID         *uuid.UUID `json:"installment_id,omitempty"`
	StripePaymentIntentID string     `json:"stripe_payment_intent_id,omitempty"`
	StripeChargeID        string     `json:"stripe_charge_id,omitempty"`
	StripeRefundID        string     `json:"stripe_refund_id,omitempty"`
	SourceEvent           string     `json:"source_event,omitempty"`
}

// Idempotency keys are deterministic per source record so retries of the
// same row always present the same key to the accounting provider.

// InvoiceIdempotencyKey derives the idempotency key for a registration invoice
func InvoiceIdempotencyKey(registrationID uuid.UUID) string {
	return fmt.Sprintf("invoice:%s", registrationID)
}

// CreditNoteIdempotencyKey derives the idempotency key for a refund credit note
func CreditNoteIdempotencyKey(refundID uuid.UUID) string {
	return fmt.Sprintf("credit-note:%s", refundID)
}

// PaymentIdempotencyKey derives the idempotency key for a payment
func PaymentIdempotencyKey(paymentID uuid.UUID) string {
	return fmt.Sprintf("payment:%s", paymentID)
}

// InstallmentIdempotencyKey derives the idempotency key for a planned installment payment
func InstallmentIdempotencyKey(installmentID uuid.UUID) string {
	return fmt.Sprintf("installment:%s", installmentID)
}
