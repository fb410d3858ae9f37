package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// RefundService handles refund requests. The refund is recorded pending
// with its Stripe refund id and completed by the charge.refunded webhook.
type RefundService struct {
	refundRepo  billing.RefundRepository
	paymentRepo billing.PaymentRepository
	gateway     billing.StripeGateway
}

// NewRefundService creates a new refund service
func NewRefundService(
	refundRepo billing.RefundRepository,
	paymentRepo billing.PaymentRepository,
	gateway billing.StripeGateway,
) *RefundService {
	return &RefundService{
		refundRepo:  refundRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
	}
}

// CreateRefund requests a refund from Stripe and records it pending
func (s *RefundService) CreateRefund(ctx context.Context, req CreateRefundRequest) (*RefundResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if !payment.IsSucceeded() && payment.Status != billing.PaymentStatusPartiallyRefunded {
		return nil, shared.NewDomainError("INVALID_STATE", "Only settled payments can be refunded")
	}

	refund, err := billing.NewRefund(payment, req.Amount, req.Reason)
	if err != nil {
		return nil, err
	}

	stripeRefundID, err := s.gateway.CreateRefund(ctx, payment.StripePaymentIntentID, req.Amount, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("failed to request refund: %w", err)
	}

	if err := refund.RecordStripeRefund(stripeRefundID); err != nil {
		return nil, err
	}
	if err := s.refundRepo.Save(ctx, refund); err != nil {
		return nil, fmt.Errorf("failed to save refund: %w", err)
	}

	response := ToRefundResponse(refund)
	return &response, nil
}

// GetRefund retrieves a refund by ID
func (s *RefundService) GetRefund(ctx context.Context, id uuid.UUID) (*RefundResponse, error) {
	refund, err := s.refundRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRefundResponse(refund)
	return &response, nil
}

// ListRefundsByPayment retrieves all refunds against a payment
func (s *RefundService) ListRefundsByPayment(ctx context.Context, paymentID uuid.UUID) ([]RefundResponse, error) {
	refunds, err := s.refundRepo.FindByPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}
	return ToRefundResponses(refunds), nil
}
