package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentPlanRepository implements PaymentPlanRepository using GORM.
// Plans and their installments are saved together in one transaction.
type GormPaymentPlanRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPaymentPlanRepository creates a new GormPaymentPlanRepository
func NewGormPaymentPlanRepository(db *gorm.DB) *GormPaymentPlanRepository {
	return &GormPaymentPlanRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPaymentPlanRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a payment plan with its installments by ID
func (r *GormPaymentPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentPlan, error) {
	var model models.PaymentPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRegistration finds the payment plan for a registration
func (r *GormPaymentPlanRepository) FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*billing.PaymentPlan, error) {
	var model models.PaymentPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("registration_id = ?", registrationID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInstallment finds the payment plan owning an installment
func (r *GormPaymentPlanRepository) FindByInstallment(ctx context.Context, installmentID uuid.UUID) (*billing.PaymentPlan, error) {
	var installment models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Select("plan_id").
		First(&installment, "id = ?", installmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, installment.PlanID)
}

// FindWithDueInstallments returns active plans having at least one scheduled
// installment due at the given time
func (r *GormPaymentPlanRepository) FindWithDueInstallments(ctx context.Context, now time.Time) ([]billing.PaymentPlan, error) {
	var planModels []models.PaymentPlanModel
	if err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("status = ?", billing.PaymentPlanStatusActive.String()).
		Where("id IN (?)", r.db.
			Model(&models.InstallmentModel{}).
			Select("plan_id").
			Where("status = ? AND due_date <= ?", billing.InstallmentStatusScheduled.String(), now)).
		Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]billing.PaymentPlan, len(planModels))
	for i := range planModels {
		plans[i] = *planModels[i].ToDomain()
	}
	return plans, nil
}

// Save creates or updates a payment plan and all its installments,
// persisting pending domain events to the outbox in the same transaction
func (r *GormPaymentPlanRepository) Save(ctx context.Context, plan *billing.PaymentPlan) error {
	events := plan.GetDomainEvents()

	var model models.PaymentPlanModel
	model.FromDomain(plan)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		installments := model.Installments
		model.Installments = nil

		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		for i := range installments {
			if err := tx.Save(&installments[i]).Error; err != nil {
				return err
			}
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

	plan.ClearDomainEvents()
	return nil
}

// Ensure GormPaymentPlanRepository implements PaymentPlanRepository
var _ billing.PaymentPlanRepository = (*GormPaymentPlanRepository)(nil)
