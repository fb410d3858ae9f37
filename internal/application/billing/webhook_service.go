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

// WebhookResult is the outcome of processing one Stripe webhook event
type WebhookResult struct {
	EventID          string
	EventType        string
	Success          bool
	AlreadyProcessed bool
	Error            string
}

// WebhookServiceConfig holds dependencies for the webhook service
type WebhookServiceConfig struct {
	Verifier         billing.WebhookVerifier
	PaymentRepo      billing.PaymentRepository
	RefundRepo       billing.RefundRepository
	PlanRepo         billing.PaymentPlanRepository
	RegistrationRepo membership.RegistrationRepository
	Idempotency      shared.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           *zap.Logger
}

// WebhookService verifies and processes Stripe webhook deliveries. Stripe
// retries deliveries, so events are deduplicated by event ID and every
// state transition below is idempotent.
type WebhookService struct {
	verifier         billing.WebhookVerifier
	paymentRepo      billing.PaymentRepository
	refundRepo       billing.RefundRepository
	planRepo         billing.PaymentPlanRepository
	registrationRepo membership.RegistrationRepository
	idempotency      shared.IdempotencyStore
	idempotencyTTL   time.Duration
	logger           *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return &WebhookService{
		verifier:         cfg.Verifier,
		paymentRepo:      cfg.PaymentRepo,
		refundRepo:       cfg.RefundRepo,
		planRepo:         cfg.PlanRepo,
		registrationRepo: cfg.RegistrationRepo,
		idempotency:      cfg.Idempotency,
		idempotencyTTL:   ttl,
		logger:           cfg.Logger,
	}
}

// Process verifies a raw webhook delivery and dispatches it by event type.
// Unhandled event types are acknowledged so Stripe stops retrying them.
func (s *WebhookService) Process(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.verifier.VerifyAndParse(payload, signature)
	if err != nil {
		s.logger.Warn("webhook signature verification failed", zap.Error(err))
		return nil, shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")
	}

	result := &WebhookResult{EventID: event.ID, EventType: event.Type}

	// Claim the event id before processing. The claim is atomic, so of
	// two concurrent deliveries of the same event exactly one proceeds
	// and the other is acknowledged as a replay.
	dedupeKey := "stripe:" + event.ID
	if s.idempotency != nil {
		claimed, err := s.idempotency.MarkProcessed(ctx, dedupeKey, s.idempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to claim webhook event: %w", err)
		}
		if !claimed {
			s.logger.Info("skipping already processed webhook event",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.Type))
			result.Success = true
			result.AlreadyProcessed = true
			return result, nil
		}
	}

	switch event.Type {
	case billing.WebhookPaymentSucceeded:
		err = s.handlePaymentSucceeded(ctx, event)
	case billing.WebhookPaymentFailed:
		err = s.handlePaymentFailed(ctx, event)
	case billing.WebhookChargeRefunded:
		err = s.handleChargeRefunded(ctx, event)
	default:
		s.logger.Debug("ignoring unhandled webhook event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type))
	}
	if err != nil {
		// Give the claim back so Stripe's retry of this delivery is not
		// swallowed as a replay
		if s.idempotency != nil {
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), dedupeKey); relErr != nil {
				s.logger.Warn("failed to release webhook event claim",
					zap.String("event_id", event.ID),
					zap.Error(relErr))
			}
		}
		result.Error = err.Error()
		s.logger.Error("webhook event processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		return result, err
	}

	result.Success = true
	return result, nil
}

// handlePaymentSucceeded settles the payment and marks either the
// registration or, for plan charges, the installment as paid. Plan charges
// carry installment_id in the intent metadata.
func (s *WebhookService) handlePaymentSucceeded(ctx context.Context, event *billing.WebhookEvent) error {
	payment, err := s.paymentRepo.FindByStripePaymentIntent(ctx, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("webhook references unknown payment intent",
				zap.String("event_id", event.ID),
				zap.String("payment_intent_id", event.PaymentIntentID))
			return nil
		}
		return err
	}

	paidAt := event.OccurredAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	if err := payment.MarkSucceeded(event.ChargeID, paidAt); err != nil {
		return err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	if installmentID, ok := event.Metadata["installment_id"]; ok && installmentID != "" {
		return s.settleInstallment(ctx, installmentID, payment.ID, paidAt)
	}
	return s.settleRegistration(ctx, payment, paidAt)
}

func (s *WebhookService) settleRegistration(ctx context.Context, payment *billing.Payment, paidAt time.Time) error {
	registration, err := s.registrationRepo.FindByID(ctx, payment.RegistrationID)
	if err != nil {
		return err
	}
	if err := registration.MarkPaid(payment.ID, paidAt); err != nil {
		return err
	}
	if err := s.registrationRepo.Save(ctx, registration); err != nil {
		return fmt.Errorf("failed to save registration: %w", err)
	}
	return nil
}

func (s *WebhookService) settleInstallment(ctx context.Context, installmentID string, paymentID uuid.UUID, paidAt time.Time) error {
	id, err := uuid.Parse(installmentID)
	if err != nil {
		return shared.NewDomainError("INVALID_INSTALLMENT", "Installment ID in metadata is not a valid UUID")
	}

	plan, err := s.planRepo.FindByInstallment(ctx, id)
	if err != nil {
		return err
	}
	if err := plan.MarkInstallmentPaid(id, paymentID, paidAt); err != nil {
		return err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return fmt.Errorf("failed to save payment plan: %w", err)
	}

	// The last installment settles the registration itself
	if plan.Status == billing.PaymentPlanStatusCompleted {
		registration, err := s.registrationRepo.FindByID(ctx, plan.RegistrationID)
		if err != nil {
			return err
		}
		if err := registration.MarkPaid(paymentID, paidAt); err != nil {
			return err
		}
		if err := s.registrationRepo.Save(ctx, registration); err != nil {
			return fmt.Errorf("failed to save registration: %w", err)
		}
	}
	return nil
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, event *billing.WebhookEvent) error {
	payment, err := s.paymentRepo.FindByStripePaymentIntent(ctx, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("webhook references unknown payment intent",
				zap.String("event_id", event.ID),
				zap.String("payment_intent_id", event.PaymentIntentID))
			return nil
		}
		return err
	}

	if err := payment.MarkFailed(event.FailureMessage); err != nil {
		// Replayed failure events arrive for already settled payments
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "INVALID_STATE" {
			s.logger.Info("ignoring failure event for settled payment",
				zap.String("event_id", event.ID),
				zap.String("payment_intent_id", event.PaymentIntentID))
			return nil
		}
		return err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	if installmentID, ok := event.Metadata["installment_id"]; ok && installmentID != "" {
		id, err := uuid.Parse(installmentID)
		if err != nil {
			return shared.NewDomainError("INVALID_INSTALLMENT", "Installment ID in metadata is not a valid UUID")
		}
		plan, err := s.planRepo.FindByInstallment(ctx, id)
		if err != nil {
			return err
		}
		if err := plan.MarkInstallmentFailed(id, event.FailureMessage); err != nil {
			return err
		}
		if err := s.planRepo.Save(ctx, plan); err != nil {
			return fmt.Errorf("failed to save payment plan: %w", err)
		}
	}
	return nil
}

// handleChargeRefunded completes the pending refund and applies the amount
// to the payment. Refunds issued from the Stripe dashboard have no pending
// row, so one is created retroactively.
func (s *WebhookService) handleChargeRefunded(ctx context.Context, event *billing.WebhookEvent) error {
	payment, err := s.paymentRepo.FindByStripePaymentIntent(ctx, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("refund webhook references unknown payment intent",
				zap.String("event_id", event.ID),
				zap.String("payment_intent_id", event.PaymentIntentID))
			return nil
		}
		return err
	}

	completedAt := event.OccurredAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	refund, err := s.refundRepo.FindByStripeRefundID(ctx, event.RefundID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		refund, err = billing.NewRefund(payment, event.Amount, "Refund issued from Stripe dashboard")
		if err != nil {
			return err
		}
	}

	if refund.Status == billing.RefundStatusSucceeded {
		return nil
	}

	if err := refund.Complete(event.RefundID, completedAt); err != nil {
		return err
	}
	if err := payment.ApplyRefund(refund.Amount); err != nil {
		return err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return fmt.Errorf("failed to save refund: %w", err)
	}
	return nil
}
