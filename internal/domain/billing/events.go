package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentSucceededEvent is raised when a payment settles. The accounting
// staging writer listens for it together with RegistrationPaid.
type PaymentSucceededEvent struct {
	shared.BaseDomainEvent
	RegistrationID        uuid.UUID       `json:"registration_id"`
	MemberID              uuid.UUID       `json:"member_id"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id"`
	StripeChargeID        string          `json:"stripe_charge_id"`
	PaidAt                time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *PaymentSucceededEvent) EventType() string {
	return "PaymentSucceeded"
}

// NewPaymentSucceededEvent creates a new PaymentSucceededEvent
func NewPaymentSucceededEvent(p *Payment) *PaymentSucceededEvent {
	var paidAt time.Time
	if p.PaidAt != nil {
		paidAt = *p.PaidAt
	}
	return &PaymentSucceededEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent("PaymentSucceeded", "Payment", p.ID),
		RegistrationID:        p.RegistrationID,
		MemberID:              p.MemberID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		StripePaymentIntentID: p.StripePaymentIntentID,
		StripeChargeID:        p.StripeChargeID,
		PaidAt:                paidAt,
	}
}

// PaymentFailedEvent is raised when a charge fails. Subscribers notify
// the member so they can retry with another card.
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	RegistrationID        uuid.UUID       `json:"registration_id"`
	MemberID              uuid.UUID       `json:"member_id"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id"`
	FailureReason         string          `json:"failure_reason"`
}

// EventType returns the event type name
func (e *PaymentFailedEvent) EventType() string {
	return "PaymentFailed"
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(p *Payment) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent("PaymentFailed", "Payment", p.ID),
		RegistrationID:        p.RegistrationID,
		MemberID:              p.MemberID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		StripePaymentIntentID: p.StripePaymentIntentID,
		FailureReason:         p.FailureReason,
	}
}

// RefundCompletedEvent is raised when Stripe confirms a refund. The
// accounting staging writer stages a credit note from it.
type RefundCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Reason         string          `json:"reason"`
	StripeRefundID string          `json:"stripe_refund_id"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// EventType returns the event type name
func (e *RefundCompletedEvent) EventType() string {
	return "RefundCompleted"
}

// NewRefundCompletedEvent creates a new RefundCompletedEvent
func NewRefundCompletedEvent(r *Refund) *RefundCompletedEvent {
	var completedAt time.Time
	if r.CompletedAt != nil {
		completedAt = *r.CompletedAt
	}
	return &RefundCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RefundCompleted", "Refund", r.ID),
		PaymentID:       r.PaymentID,
		RegistrationID:  r.RegistrationID,
		MemberID:        r.MemberID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Reason:          r.Reason,
		StripeRefundID:  r.StripeRefundID,
		CompletedAt:     completedAt,
	}
}

// PaymentPlanCreatedEvent is raised when a payment plan is created. The
// accounting staging writer inserts planned payment rows from it.
type PaymentPlanCreatedEvent struct {
	shared.BaseDomainEvent
	RegistrationID uuid.UUID        `json:"registration_id"`
	MemberID       uuid.UUID        `json:"member_id"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Currency       string           `json:"currency"`
	Installments   []InstallmentDue `json:"installments"`
}

// InstallmentDue is the event-side view of a scheduled installment
type InstallmentDue struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	Sequence      int             `json:"sequence"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *PaymentPlanCreatedEvent) EventType() string {
	return "PaymentPlanCreated"
}

// NewPaymentPlanCreatedEvent creates a new PaymentPlanCreatedEvent
func NewPaymentPlanCreatedEvent(p *PaymentPlan) *PaymentPlanCreatedEvent {
	installments := make([]InstallmentDue, 0, len(p.Installments))
	for _, inst := range p.Installments {
		installments = append(installments, InstallmentDue{
			InstallmentID: inst.ID,
			Sequence:      inst.Sequence,
			Amount:        inst.Amount,
			DueDate:       inst.DueDate,
		})
	}
	return &PaymentPlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentPlanCreated", "PaymentPlan", p.ID),
		RegistrationID:  p.RegistrationID,
		MemberID:        p.MemberID,
		TotalAmount:     p.TotalAmount,
		Currency:        p.Currency,
		Installments:    installments,
	}
}

// InstallmentPaidEvent is raised when a plan installment settles. The
// staging writer promotes the matching planned payment row.
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	InstallmentID  uuid.UUID       `json:"installment_id"`
	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaidAt         time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InstallmentPaidEvent) EventType() string {
	return "InstallmentPaid"
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(p *PaymentPlan, inst *Installment) *InstallmentPaidEvent {
	var paymentID uuid.UUID
	if inst.PaymentID != nil {
		paymentID = *inst.PaymentID
	}
	var paidAt time.Time
	if inst.PaidAt != nil {
		paidAt = *inst.PaidAt
	}
	return &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentPaid", "PaymentPlan", p.ID),
		InstallmentID:   inst.ID,
		RegistrationID:  p.RegistrationID,
		MemberID:        p.MemberID,
		PaymentID:       paymentID,
		Amount:          inst.Amount,
		Currency:        p.Currency,
		PaidAt:          paidAt,
	}
}

// PaymentPlanCompletedEvent is raised when every installment has been paid
type PaymentPlanCompletedEvent struct {
	shared.BaseDomainEvent
	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *PaymentPlanCompletedEvent) EventType() string {
	return "PaymentPlanCompleted"
}

// NewPaymentPlanCompletedEvent creates a new PaymentPlanCompletedEvent
func NewPaymentPlanCompletedEvent(p *PaymentPlan) *PaymentPlanCompletedEvent {
	return &PaymentPlanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentPlanCompleted", "PaymentPlan", p.ID),
		RegistrationID:  p.RegistrationID,
		MemberID:        p.MemberID,
		TotalAmount:     p.TotalAmount,
	}
}
