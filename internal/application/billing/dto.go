package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Payment DTOs
// =============================================================================

// CreatePaymentIntentRequest represents a request to start a Stripe charge
// for a submitted registration
type CreatePaymentIntentRequest struct {
	RegistrationID uuid.UUID `json:"registration_id" binding:"required"`
}

// PaymentIntentResponse carries the client secret the frontend needs to
// confirm the charge
type PaymentIntentResponse struct {
	PaymentID             uuid.UUID       `json:"payment_id"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id"`
	ClientSecret          string          `json:"client_secret"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                    uuid.UUID       `json:"id"`
	RegistrationID        uuid.UUID       `json:"registration_id"`
	MemberID              uuid.UUID       `json:"member_id"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Status                string          `json:"status"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id"`
	StripeChargeID        string          `json:"stripe_charge_id,omitempty"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	RefundedAmount        decimal.Decimal `json:"refunded_amount"`
	PaidAt                *time.Time      `json:"paid_at"`
	FailedAt              *time.Time      `json:"failed_at"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// PaymentListFilter represents filter options for payment list
type PaymentListFilter struct {
	RegistrationID *uuid.UUID `form:"registration_id"`
	MemberID       *uuid.UUID `form:"member_id"`
	Status         string     `form:"status" binding:"omitempty,oneof=PENDING SUCCEEDED FAILED REFUNDED PARTIALLY_REFUNDED"`
	Page           int        `form:"page" binding:"min=0"`
	PageSize       int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                    p.ID,
		RegistrationID:        p.RegistrationID,
		MemberID:              p.MemberID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		Status:                p.Status.String(),
		StripePaymentIntentID: p.StripePaymentIntentID,
		StripeChargeID:        p.StripeChargeID,
		FailureReason:         p.FailureReason,
		RefundedAmount:        p.RefundedAmount,
		PaidAt:                p.PaidAt,
		FailedAt:              p.FailedAt,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// =============================================================================
// Refund DTOs
// =============================================================================

// CreateRefundRequest represents a request to refund part or all of a payment
type CreateRefundRequest struct {
	PaymentID uuid.UUID       `json:"payment_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason" binding:"required,min=1,max=500"`
}

// RefundResponse represents a refund in API responses
type RefundResponse struct {
	ID             uuid.UUID       `json:"id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Reason         string          `json:"reason"`
	Status         string          `json:"status"`
	StripeRefundID string          `json:"stripe_refund_id,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToRefundResponse converts a domain Refund to RefundResponse
func ToRefundResponse(r *billing.Refund) RefundResponse {
	return RefundResponse{
		ID:             r.ID,
		PaymentID:      r.PaymentID,
		RegistrationID: r.RegistrationID,
		MemberID:       r.MemberID,
		Amount:         r.Amount,
		Currency:       r.Currency,
		Reason:         r.Reason,
		Status:         r.Status.String(),
		StripeRefundID: r.StripeRefundID,
		FailureReason:  r.FailureReason,
		CompletedAt:    r.CompletedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ToRefundResponses converts a slice of refunds
func ToRefundResponses(refunds []billing.Refund) []RefundResponse {
	responses := make([]RefundResponse, len(refunds))
	for i := range refunds {
		responses[i] = ToRefundResponse(&refunds[i])
	}
	return responses
}

// =============================================================================
// Payment plan DTOs
// =============================================================================

// CreatePaymentPlanRequest represents a request to split a registration fee
// into monthly installments
type CreatePaymentPlanRequest struct {
	RegistrationID   uuid.UUID `json:"registration_id" binding:"required"`
	InstallmentCount int       `json:"installment_count" binding:"required,min=2,max=12"`
	FirstDueDate     time.Time `json:"first_due_date" binding:"required"`
}

// InstallmentResponse represents one installment in API responses
type InstallmentResponse struct {
	ID                    uuid.UUID       `json:"id"`
	Sequence              int             `json:"sequence"`
	Amount                decimal.Decimal `json:"amount"`
	DueDate               time.Time       `json:"due_date"`
	Status                string          `json:"status"`
	StripePaymentIntentID string          `json:"stripe_payment_intent_id,omitempty"`
	PaymentID             *uuid.UUID      `json:"payment_id"`
	PaidAt                *time.Time      `json:"paid_at"`
	FailureReason         string          `json:"failure_reason,omitempty"`
}

// PaymentPlanResponse represents a payment plan in API responses
type PaymentPlanResponse struct {
	ID                uuid.UUID             `json:"id"`
	RegistrationID    uuid.UUID             `json:"registration_id"`
	MemberID          uuid.UUID             `json:"member_id"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	OutstandingAmount decimal.Decimal       `json:"outstanding_amount"`
	Currency          string                `json:"currency"`
	Status            string                `json:"status"`
	Installments      []InstallmentResponse `json:"installments"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// ToPaymentPlanResponse converts a domain PaymentPlan to PaymentPlanResponse
func ToPaymentPlanResponse(p *billing.PaymentPlan) PaymentPlanResponse {
	installments := make([]InstallmentResponse, len(p.Installments))
	for i := range p.Installments {
		inst := &p.Installments[i]
		installments[i] = InstallmentResponse{
			ID:                    inst.ID,
			Sequence:              inst.Sequence,
			Amount:                inst.Amount,
			DueDate:               inst.DueDate,
			Status:                inst.Status.String(),
			StripePaymentIntentID: inst.StripePaymentIntentID,
			PaymentID:             inst.PaymentID,
			PaidAt:                inst.PaidAt,
			FailureReason:         inst.FailureReason,
		}
	}

	return PaymentPlanResponse{
		ID:                p.ID,
		RegistrationID:    p.RegistrationID,
		MemberID:          p.MemberID,
		TotalAmount:       p.TotalAmount,
		OutstandingAmount: p.OutstandingAmount(),
		Currency:          p.Currency,
		Status:            p.Status.String(),
		Installments:      installments,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
