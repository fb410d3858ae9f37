package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentStagingRepository implements PaymentStagingRepository using GORM
type GormPaymentStagingRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormPaymentStagingRepository creates a new GormPaymentStagingRepository
func NewGormPaymentStagingRepository(db *gorm.DB) *GormPaymentStagingRepository {
	return &GormPaymentStagingRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormPaymentStagingRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a payment staging row by ID
func (r *GormPaymentStagingRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.PaymentStaging, error) {
	var model models.PaymentStagingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIdempotencyKey finds a row by its deterministic idempotency key
func (r *GormPaymentStagingRepository) FindByIdempotencyKey(ctx context.Context, key string) (*accounting.PaymentStaging, error) {
	if key == "" {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot be empty")
	}
	var model models.PaymentStagingModel
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByInvoiceStaging finds payment rows linked to an invoice staging row
func (r *GormPaymentStagingRepository) FindByInvoiceStaging(ctx context.Context, invoiceStagingID uuid.UUID) ([]accounting.PaymentStaging, error) {
	var stagingModels []models.PaymentStagingModel
	if err := r.db.WithContext(ctx).
		Where("invoice_staging_id = ?", invoiceStagingID).
		Order("created_at ASC").
		Find(&stagingModels).Error; err != nil {
		return nil, err
	}
	return paymentStagingToDomain(stagingModels)
}

// FindAll finds rows matching the filter with a total count
func (r *GormPaymentStagingRepository) FindAll(ctx context.Context, filter accounting.StagingFilter) ([]accounting.PaymentStaging, int64, error) {
	query := applyStagingFilter(r.db.WithContext(ctx).Model(&models.PaymentStagingModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stagingModels []models.PaymentStagingModel
	if err := applyPaginationWithFields(query, filter.Filter, StagingSortFields).Find(&stagingModels).Error; err != nil {
		return nil, 0, err
	}

	rows, err := paymentStagingToDomain(stagingModels)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ClaimPending atomically claims up to limit eligible rows for a sync run.
// Rows are locked with FOR UPDATE SKIP LOCKED so concurrent runs never claim
// the same row, then flipped to staged before the transaction commits.
func (r *GormPaymentStagingRepository) ClaimPending(ctx context.Context, limit int, now time.Time) ([]*accounting.PaymentStaging, error) {
	var claimed []models.PaymentStagingModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("sync_status = ?", accounting.SyncStatusPending.String()).
			Or(tx.Where("sync_status = ?", accounting.SyncStatusFailed.String()).
				Where("next_retry_at IS NOT NULL AND next_retry_at <= ?", now).
				Where("retry_count < max_retries")).
			Order("created_at ASC").
			Limit(limit).
			Find(&claimed).Error; err != nil {
			return err
		}

		if len(claimed) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(claimed))
		for i := range claimed {
			ids[i] = claimed[i].ID
		}

		if err := tx.Model(&models.PaymentStagingModel{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"sync_status": accounting.SyncStatusStaged.String(),
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		for i := range claimed {
			claimed[i].SyncStatus = accounting.SyncStatusStaged.String()
			claimed[i].UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := make([]*accounting.PaymentStaging, 0, len(claimed))
	for i := range claimed {
		row, err := claimed[i].ToDomain()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReclaimStale moves staged rows last touched before cutoff back to pending
// and returns how many rows were reclaimed
func (r *GormPaymentStagingRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentStagingModel{}).
		Where("sync_status = ?", accounting.SyncStatusStaged.String()).
		Where("updated_at < ?", cutoff).
		Updates(map[string]interface{}{
			"sync_status": accounting.SyncStatusPending.String(),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// PromoteDue moves planned rows whose due date has passed to pending and
// returns how many rows were promoted
func (r *GormPaymentStagingRepository) PromoteDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentStagingModel{}).
		Where("sync_status = ?", accounting.SyncStatusPlanned.String()).
		Where("due_at IS NOT NULL AND due_at <= ?", now).
		Updates(map[string]interface{}{
			"sync_status": accounting.SyncStatusPending.String(),
			"paid_at":     now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Save creates or updates a payment staging row, persisting pending domain
// events to the outbox in the same transaction
func (r *GormPaymentStagingRepository) Save(ctx context.Context, row *accounting.PaymentStaging) error {
	events := row.GetDomainEvents()

	var model models.PaymentStagingModel
	if err := model.FromDomain(row); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

	row.ClearDomainEvents()
	return nil
}

// CountByStatus returns row counts per sync status
func (r *GormPaymentStagingRepository) CountByStatus(ctx context.Context) (map[accounting.SyncStatus]int64, error) {
	return countStagingByStatus(ctx, r.db, &models.PaymentStagingModel{})
}

// ExistsByIdempotencyKey checks whether a row with the key already exists
func (r *GormPaymentStagingRepository) ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentStagingModel{}).
		Where("idempotency_key = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func paymentStagingToDomain(stagingModels []models.PaymentStagingModel) ([]accounting.PaymentStaging, error) {
	rows := make([]accounting.PaymentStaging, 0, len(stagingModels))
	for i := range stagingModels {
		row, err := stagingModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

// Ensure GormPaymentStagingRepository implements PaymentStagingRepository
var _ accounting.PaymentStagingRepository = (*GormPaymentStagingRepository)(nil)
