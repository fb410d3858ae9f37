package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncRunRepository implements SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Save creates or updates a sync run record
func (r *GormSyncRunRepository) Save(ctx context.Context, run *accounting.SyncRun) error {
	var model models.SyncRunModel
	if err := model.FromDomain(run); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByID finds a sync run by ID
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.SyncRun, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindRecent returns the most recent runs, newest first
func (r *GormSyncRunRepository) FindRecent(ctx context.Context, limit int) ([]accounting.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runModels []models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]accounting.SyncRun, 0, len(runModels))
	for i := range runModels {
		run, err := runModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

// Ensure GormSyncRunRepository implements SyncRunRepository
var _ accounting.SyncRunRepository = (*GormSyncRunRepository)(nil)
