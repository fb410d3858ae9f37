package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRefundRepository implements RefundRepository using GORM
type GormRefundRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormRefundRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a refund by its ID
func (r *GormRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Refund, error) {
	var model models.RefundModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPayment finds all refunds issued against a payment
func (r *GormRefundRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]billing.Refund, error) {
	var refundModels []models.RefundModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&refundModels).Error; err != nil {
		return nil, err
	}

	refunds := make([]billing.Refund, len(refundModels))
	for i := range refundModels {
		refunds[i] = *refundModels[i].ToDomain()
	}
	return refunds, nil
}

// FindByStripeRefundID finds a refund by its Stripe refund id
func (r *GormRefundRepository) FindByStripeRefundID(ctx context.Context, stripeRefundID string) (*billing.Refund, error) {
	if stripeRefundID == "" {
		return nil, shared.NewDomainError("INVALID_REFUND_ID", "Stripe refund ID cannot be empty")
	}
	var model models.RefundModel
	if err := r.db.WithContext(ctx).
		Where("stripe_refund_id = ?", stripeRefundID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a refund, persisting pending domain events
// to the outbox in the same transaction
func (r *GormRefundRepository) Save(ctx context.Context, refund *billing.Refund) error {
	events := refund.GetDomainEvents()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.RefundModel
		model.FromDomain(refund)
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	refund.ClearDomainEvents()
	return nil
}

// Ensure GormRefundRepository implements RefundRepository
var _ billing.RefundRepository = (*GormRefundRepository)(nil)
