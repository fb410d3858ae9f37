package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	RegistrationID *uuid.UUID
	MemberID       *uuid.UUID
	Status         *PaymentStatus
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByStripePaymentIntent(ctx context.Context, paymentIntentID string) (*Payment, error)
	FindByRegistration(ctx context.Context, registrationID uuid.UUID) ([]Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, int64, error)
	Save(ctx context.Context, payment *Payment) error
}

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Refund, error)
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]Refund, error)
	FindByStripeRefundID(ctx context.Context, stripeRefundID string) (*Refund, error)
	Save(ctx context.Context, refund *Refund) error
}

// PaymentPlanRepository defines the interface for payment plan persistence.
// Plans are saved with their installments in one transaction.
type PaymentPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentPlan, error)
	FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*PaymentPlan, error)
	FindByInstallment(ctx context.Context, installmentID uuid.UUID) (*PaymentPlan, error)
	// FindWithDueInstallments returns active plans having at least one
	// scheduled installment due at the given time
	FindWithDueInstallments(ctx context.Context, now time.Time) ([]PaymentPlan, error)
	Save(ctx context.Context, plan *PaymentPlan) error
}
