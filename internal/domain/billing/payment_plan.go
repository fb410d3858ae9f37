package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the status of a payment plan installment
type InstallmentStatus string

const (
	// InstallmentStatusScheduled indicates the installment is future-dated
	InstallmentStatusScheduled InstallmentStatus = "SCHEDULED"
	// InstallmentStatusPaid indicates the installment charge succeeded
	InstallmentStatusPaid InstallmentStatus = "PAID"
	// InstallmentStatusFailed indicates the installment charge failed
	InstallmentStatusFailed InstallmentStatus = "FAILED"
	// InstallmentStatusCancelled indicates the installment was cancelled with its plan
	InstallmentStatusCancelled InstallmentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusScheduled, InstallmentStatusPaid,
		InstallmentStatusFailed, InstallmentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// Installment is one scheduled slice of a payment plan
type Installment struct {
	shared.BaseEntity

	PlanID   uuid.UUID         `json:"plan_id"`
	Sequence int               `json:"sequence"`
	Amount   decimal.Decimal   `json:"amount"`
	DueDate  time.Time         `json:"due_date"`
	Status   InstallmentStatus `json:"status"`

	StripePaymentIntentID string     `json:"stripe_payment_intent_id"`
	PaymentID             *uuid.UUID `json:"payment_id"`
	PaidAt                *time.Time `json:"paid_at"`
	FailureReason         string     `json:"failure_reason"`
}

// IsDue returns true if the installment should be charged at the given time
func (i *Installment) IsDue(at time.Time) bool {
	return i.Status == InstallmentStatusScheduled && !at.Before(i.DueDate)
}

// PaymentPlanStatus represents the status of a payment plan
type PaymentPlanStatus string

const (
	// PaymentPlanStatusActive indicates installments remain to be collected
	PaymentPlanStatusActive PaymentPlanStatus = "ACTIVE"
	// PaymentPlanStatusCompleted indicates all installments were paid
	PaymentPlanStatusCompleted PaymentPlanStatus = "COMPLETED"
	// PaymentPlanStatusCancelled indicates the plan was cancelled
	PaymentPlanStatusCancelled PaymentPlanStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentPlanStatus
func (s PaymentPlanStatus) IsValid() bool {
	switch s {
	case PaymentPlanStatusActive, PaymentPlanStatusCompleted, PaymentPlanStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentPlanStatus
func (s PaymentPlanStatus) String() string {
	return string(s)
}

// PaymentPlan splits a registration fee into equal monthly installments.
// The split keeps cents exact: any rounding remainder lands on the first
// installment so the installments always sum to the total.
type PaymentPlan struct {
	shared.BaseAggregateRoot

	RegistrationID uuid.UUID         `json:"registration_id"`
	MemberID       uuid.UUID         `json:"member_id"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	Currency       string            `json:"currency"`
	Status         PaymentPlanStatus `json:"status"`
	Installments   []Installment     `json:"installments"`
}

// PaymentPlanMaxInstallments bounds how finely a fee may be split
const PaymentPlanMaxInstallments = 12

// NewPaymentPlan creates an active payment plan with the fee split across
// count installments, the first due at firstDueDate and the rest monthly.
func NewPaymentPlan(registrationID, memberID uuid.UUID, totalAmount decimal.Decimal, currency string, count int, firstDueDate time.Time) (*PaymentPlan, error) {
	if registrationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REGISTRATION", "Registration ID cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if count < 2 || count > PaymentPlanMaxInstallments {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT_COUNT",
			fmt.Sprintf("Installment count must be between 2 and %d", PaymentPlanMaxInstallments))
	}

	plan := &PaymentPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RegistrationID:    registrationID,
		MemberID:          memberID,
		TotalAmount:       totalAmount,
		Currency:          currency,
		Status:            PaymentPlanStatusActive,
	}

	base := totalAmount.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	remainder := totalAmount.Sub(base.Mul(decimal.NewFromInt(int64(count))))

	for i := 0; i < count; i++ {
		amount := base
		if i == 0 {
			amount = amount.Add(remainder)
		}
		plan.Installments = append(plan.Installments, Installment{
			BaseEntity: shared.NewBaseEntity(),
			PlanID:     plan.ID,
			Sequence:   i + 1,
			Amount:     amount,
			DueDate:    firstDueDate.AddDate(0, i, 0),
			Status:     InstallmentStatusScheduled,
		})
	}

	plan.AddDomainEvent(NewPaymentPlanCreatedEvent(plan))

	return plan, nil
}

// MarkInstallmentPaid settles one installment and completes the plan when
// it was the last one. Idempotent per installment and payment.
func (p *PaymentPlan) MarkInstallmentPaid(installmentID, paymentID uuid.UUID, paidAt time.Time) error {
	if p.Status == PaymentPlanStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay installment on a cancelled plan")
	}

	idx := -1
	for i := range p.Installments {
		if p.Installments[i].ID == installmentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.ErrNotFound
	}

	inst := &p.Installments[idx]
	if inst.Status == InstallmentStatusPaid {
		if inst.PaymentID != nil && *inst.PaymentID == paymentID {
			return nil
		}
		return shared.ErrDuplicatePayment
	}
	if inst.Status == InstallmentStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled installment")
	}

	inst.Status = InstallmentStatusPaid
	inst.PaymentID = &paymentID
	inst.PaidAt = &paidAt
	inst.FailureReason = ""
	inst.UpdatedAt = time.Now()
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewInstallmentPaidEvent(p, inst))

	if p.allPaid() {
		p.Status = PaymentPlanStatusCompleted
		p.AddDomainEvent(NewPaymentPlanCompletedEvent(p))
	}

	return nil
}

// RecordInstallmentCharge stores the payment intent issued for an
// installment so webhook events can be traced back to it
func (p *PaymentPlan) RecordInstallmentCharge(installmentID uuid.UUID, stripePaymentIntentID string) error {
	if stripePaymentIntentID == "" {
		return shared.NewDomainError("INVALID_PAYMENT_INTENT", "Stripe payment intent ID cannot be empty")
	}
	for i := range p.Installments {
		if p.Installments[i].ID == installmentID {
			p.Installments[i].StripePaymentIntentID = stripePaymentIntentID
			p.Installments[i].UpdatedAt = time.Now()
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// MarkInstallmentFailed records a failed installment charge
func (p *PaymentPlan) MarkInstallmentFailed(installmentID uuid.UUID, reason string) error {
	for i := range p.Installments {
		if p.Installments[i].ID == installmentID {
			inst := &p.Installments[i]
			if inst.Status != InstallmentStatusScheduled && inst.Status != InstallmentStatusFailed {
				return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail installment in %s status", inst.Status))
			}
			inst.Status = InstallmentStatusFailed
			inst.FailureReason = reason
			inst.UpdatedAt = time.Now()
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Cancel cancels the plan and all unpaid installments
func (p *PaymentPlan) Cancel() error {
	if p.Status != PaymentPlanStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel plan in %s status", p.Status))
	}
	now := time.Now()
	p.Status = PaymentPlanStatusCancelled
	for i := range p.Installments {
		if p.Installments[i].Status == InstallmentStatusScheduled || p.Installments[i].Status == InstallmentStatusFailed {
			p.Installments[i].Status = InstallmentStatusCancelled
			p.Installments[i].UpdatedAt = now
		}
	}
	p.UpdatedAt = now
	return nil
}

// DueInstallments returns scheduled installments due at the given time
func (p *PaymentPlan) DueInstallments(at time.Time) []Installment {
	var due []Installment
	for _, inst := range p.Installments {
		if inst.IsDue(at) {
			due = append(due, inst)
		}
	}
	return due
}

// OutstandingAmount returns the sum of unpaid installments
func (p *PaymentPlan) OutstandingAmount() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Installments {
		if inst.Status == InstallmentStatusScheduled || inst.Status == InstallmentStatusFailed {
			total = total.Add(inst.Amount)
		}
	}
	return total
}

func (p *PaymentPlan) allPaid() bool {
	for _, inst := range p.Installments {
		if inst.Status != InstallmentStatusPaid {
			return false
		}
	}
	return true
}
