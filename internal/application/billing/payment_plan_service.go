package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentPlanService handles payment plan creation and the scheduled
// charging of due installments
type PaymentPlanService struct {
	planRepo         billing.PaymentPlanRepository
	paymentRepo      billing.PaymentRepository
	registrationRepo membership.RegistrationRepository
	productRepo      membership.ProductRepository
	gateway          billing.StripeGateway
	logger           *zap.Logger
}

// NewPaymentPlanService creates a new payment plan service
func NewPaymentPlanService(
	planRepo billing.PaymentPlanRepository,
	paymentRepo billing.PaymentRepository,
	registrationRepo membership.RegistrationRepository,
	productRepo membership.ProductRepository,
	gateway billing.StripeGateway,
	logger *zap.Logger,
) *PaymentPlanService {
	return &PaymentPlanService{
		planRepo:         planRepo,
		paymentRepo:      paymentRepo,
		registrationRepo: registrationRepo,
		productRepo:      productRepo,
		gateway:          gateway,
		logger:           logger,
	}
}

// CreatePaymentPlan splits a submitted registration's fee into monthly
// installments. The product must permit installments and the registration
// must still be awaiting payment.
func (s *PaymentPlanService) CreatePaymentPlan(ctx context.Context, req CreatePaymentPlanRequest) (*PaymentPlanResponse, error) {
	registration, err := s.registrationRepo.FindByID(ctx, req.RegistrationID)
	if err != nil {
		return nil, err
	}

	existing, err := s.planRepo.FindByRegistration(ctx, req.RegistrationID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing plan: %w", err)
	}
	if existing != nil && existing.Status == billing.PaymentPlanStatusActive {
		return nil, shared.NewDomainError("DUPLICATE_PLAN", "Registration already has an active payment plan")
	}

	product, err := s.productRepo.FindByID(ctx, registration.ProductID)
	if err != nil {
		return nil, err
	}

	if err := registration.SelectPaymentPlan(product); err != nil {
		return nil, err
	}

	plan, err := billing.NewPaymentPlan(
		registration.ID,
		registration.MemberID,
		registration.Amount,
		registration.Currency,
		req.InstallmentCount,
		req.FirstDueDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Save(ctx, registration); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save payment plan: %w", err)
	}

	response := ToPaymentPlanResponse(plan)
	return &response, nil
}

// GetPaymentPlan retrieves a payment plan by ID
func (s *PaymentPlanService) GetPaymentPlan(ctx context.Context, id uuid.UUID) (*PaymentPlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentPlanResponse(plan)
	return &response, nil
}

// GetPaymentPlanByRegistration retrieves the payment plan for a registration
func (s *PaymentPlanService) GetPaymentPlanByRegistration(ctx context.Context, registrationID uuid.UUID) (*PaymentPlanResponse, error) {
	plan, err := s.planRepo.FindByRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentPlanResponse(plan)
	return &response, nil
}

// CancelPaymentPlan cancels a plan and its unpaid installments
func (s *PaymentPlanService) CancelPaymentPlan(ctx context.Context, id uuid.UUID) error {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := plan.Cancel(); err != nil {
		return err
	}
	return s.planRepo.Save(ctx, plan)
}

// ChargeDueInstallments issues payment intents for every scheduled
// installment that has come due. Called from the daily scheduler. The
// charges settle asynchronously through the webhook processor, which
// matches them back by the installment_id metadata.
func (s *PaymentPlanService) ChargeDueInstallments(ctx context.Context, now time.Time) (int, error) {
	plans, err := s.planRepo.FindWithDueInstallments(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find due installments: %w", err)
	}

	charged := 0
	for i := range plans {
		plan := &plans[i]
		for _, inst := range plan.DueInstallments(now) {
			if inst.StripePaymentIntentID != "" {
				// Charge already in flight from an earlier run
				continue
			}

			intent, err := s.gateway.CreatePaymentIntent(ctx, inst.Amount, plan.Currency, map[string]string{
				"registration_id": plan.RegistrationID.String(),
				"member_id":       plan.MemberID.String(),
				"installment_id":  inst.ID.String(),
			})
			if err != nil {
				s.logger.Error("failed to create installment payment intent",
					zap.String("plan_id", plan.ID.String()),
					zap.String("installment_id", inst.ID.String()),
					zap.Error(err))
				continue
			}

			payment, err := billing.NewPayment(plan.RegistrationID, plan.MemberID, inst.Amount, plan.Currency, intent.ID)
			if err != nil {
				return charged, err
			}
			if err := s.paymentRepo.Save(ctx, payment); err != nil {
				return charged, fmt.Errorf("failed to save payment: %w", err)
			}

			if err := plan.RecordInstallmentCharge(inst.ID, intent.ID); err != nil {
				return charged, err
			}
			charged++
		}

		if err := s.planRepo.Save(ctx, plan); err != nil {
			return charged, fmt.Errorf("failed to save payment plan: %w", err)
		}
	}

	if charged > 0 {
		s.logger.Info("charged due installments", zap.Int("count", charged))
	}
	return charged, nil
}
