package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// PaymentService handles payment intent creation and payment queries
type PaymentService struct {
	paymentRepo      billing.PaymentRepository
	registrationRepo membership.RegistrationRepository
	gateway          billing.StripeGateway
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	registrationRepo membership.RegistrationRepository,
	gateway billing.StripeGateway,
) *PaymentService {
	return &PaymentService{
		paymentRepo:      paymentRepo,
		registrationRepo: registrationRepo,
		gateway:          gateway,
	}
}

// CreatePaymentIntent starts a Stripe charge for a submitted registration
// and records the pending payment
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	registration, err := s.registrationRepo.FindByID(ctx, req.RegistrationID)
	if err != nil {
		return nil, err
	}
	if registration.Status != membership.RegistrationStatusPendingPayment {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot take payment for a registration in %s status", registration.Status))
	}
	if registration.OnPaymentPlan {
		return nil, shared.NewDomainError("INVALID_STATE", "Registration is collected by payment plan")
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, registration.Amount, registration.Currency, map[string]string{
		"registration_id": registration.ID.String(),
		"member_id":       registration.MemberID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	payment, err := billing.NewPayment(registration.ID, registration.MemberID, registration.Amount, registration.Currency, intent.ID)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	return &PaymentIntentResponse{
		PaymentID:             payment.ID,
		StripePaymentIntentID: intent.ID,
		ClientSecret:          intent.ClientSecret,
		Amount:                payment.Amount,
		Currency:              payment.Currency,
	}, nil
}

// GetPayment retrieves a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListPayments retrieves payments with filtering and pagination
func (s *PaymentService) ListPayments(ctx context.Context, filter PaymentListFilter) (*shared.Paginated[PaymentResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := billing.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		RegistrationID: filter.RegistrationID,
		MemberID:       filter.MemberID,
	}
	if filter.Status != "" {
		status := billing.PaymentStatus(filter.Status)
		domainFilter.Status = &status
	}

	payments, total, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	result := shared.NewPaginated(ToPaymentResponses(payments), total, filter.Page, filter.PageSize)
	return &result, nil
}
