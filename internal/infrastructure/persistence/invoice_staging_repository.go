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

// GormInvoiceStagingRepository implements InvoiceStagingRepository using GORM
type GormInvoiceStagingRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormInvoiceStagingRepository creates a new GormInvoiceStagingRepository
func NewGormInvoiceStagingRepository(db *gorm.DB) *GormInvoiceStagingRepository {
	return &GormInvoiceStagingRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormInvoiceStagingRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an invoice staging row by ID
func (r *GormInvoiceStagingRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.InvoiceStaging, error) {
	var model models.InvoiceStagingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIdempotencyKey finds a row by its deterministic idempotency key
func (r *GormInvoiceStagingRepository) FindByIdempotencyKey(ctx context.Context, key string) (*accounting.InvoiceStaging, error) {
	if key == "" {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot be empty")
	}
	var model models.InvoiceStagingModel
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

// FindByRegistration finds rows staged for a registration
func (r *GormInvoiceStagingRepository) FindByRegistration(ctx context.Context, registrationID uuid.UUID) ([]accounting.InvoiceStaging, error) {
	var stagingModels []models.InvoiceStagingModel
	if err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at ASC").
		Find(&stagingModels).Error; err != nil {
		return nil, err
	}
	return invoiceStagingToDomain(stagingModels)
}

// FindAll finds rows matching the filter with a total count
func (r *GormInvoiceStagingRepository) FindAll(ctx context.Context, filter accounting.StagingFilter) ([]accounting.InvoiceStaging, int64, error) {
	query := applyStagingFilter(r.db.WithContext(ctx).Model(&models.InvoiceStagingModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stagingModels []models.InvoiceStagingModel
	if err := applyPaginationWithFields(query, filter.Filter, StagingSortFields).Find(&stagingModels).Error; err != nil {
		return nil, 0, err
	}

	rows, err := invoiceStagingToDomain(stagingModels)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ClaimPending atomically claims up to limit eligible rows for a sync run.
// Rows are locked with FOR UPDATE SKIP LOCKED so concurrent runs never claim
// the same row, then flipped to staged before the transaction commits.
func (r *GormInvoiceStagingRepository) ClaimPending(ctx context.Context, limit int, now time.Time) ([]*accounting.InvoiceStaging, error) {
	var claimed []models.InvoiceStagingModel

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

		if err := tx.Model(&models.InvoiceStagingModel{}).
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

	rows := make([]*accounting.InvoiceStaging, 0, len(claimed))
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
func (r *GormInvoiceStagingRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceStagingModel{}).
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

// Save creates or updates an invoice staging row, persisting pending domain
// events to the outbox in the same transaction
func (r *GormInvoiceStagingRepository) Save(ctx context.Context, row *accounting.InvoiceStaging) error {
	events := row.GetDomainEvents()

	var model models.InvoiceStagingModel
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
func (r *GormInvoiceStagingRepository) CountByStatus(ctx context.Context) (map[accounting.SyncStatus]int64, error) {
	return countStagingByStatus(ctx, r.db, &models.InvoiceStagingModel{})
}

// ExistsByIdempotencyKey checks whether a row with the key already exists
func (r *GormInvoiceStagingRepository) ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceStagingModel{}).
		Where("idempotency_key = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func invoiceStagingToDomain(stagingModels []models.InvoiceStagingModel) ([]accounting.InvoiceStaging, error) {
	rows := make([]accounting.InvoiceStaging, 0, len(stagingModels))
	for i := range stagingModels {
		row, err := stagingModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

// applyStagingFilter applies staging queue filter conditions shared by the
// invoice and payment staging repositories
func applyStagingFilter(query *gorm.DB, filter accounting.StagingFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("sync_status = ?", filter.Status.String())
	}
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.RegistrationID != nil {
		query = query.Where("registration_id = ?", *filter.RegistrationID)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}

// countStagingByStatus groups staging rows by sync status
func countStagingByStatus(ctx context.Context, db *gorm.DB, model interface{}) (map[accounting.SyncStatus]int64, error) {
	var results []struct {
		SyncStatus string
		Count      int64
	}
	if err := db.WithContext(ctx).
		Model(model).
		Select("sync_status, COUNT(*) as count").
		Group("sync_status").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[accounting.SyncStatus]int64)
	for _, result := range results {
		counts[accounting.SyncStatus(result.SyncStatus)] = result.Count
	}
	return counts, nil
}

// Ensure GormInvoiceStagingRepository implements InvoiceStagingRepository
var _ accounting.InvoiceStagingRepository = (*GormInvoiceStagingRepository)(nil)
