package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSeasonRepository implements SeasonRepository using GORM
type GormSeasonRepository struct {
	db *gorm.DB
}

// NewGormSeasonRepository creates a new GormSeasonRepository
func NewGormSeasonRepository(db *gorm.DB) *GormSeasonRepository {
	return &GormSeasonRepository{db: db}
}

// FindByID finds a season by its ID
func (r *GormSeasonRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Season, error) {
	var model models.SeasonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds seasons matching the filter with a total count
func (r *GormSeasonRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Season, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SeasonModel{})

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var seasonModels []models.SeasonModel
	if err := applyPagination(query, filter).Find(&seasonModels).Error; err != nil {
		return nil, 0, err
	}

	seasons := make([]membership.Season, len(seasonModels))
	for i := range seasonModels {
		seasons[i] = *seasonModels[i].ToDomain()
	}
	return seasons, total, nil
}

// Save creates or updates a season
func (r *GormSeasonRepository) Save(ctx context.Context, season *membership.Season) error {
	var model models.SeasonModel
	model.FromDomain(season)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a season
func (r *GormSeasonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SeasonModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSeasonRepository implements SeasonRepository
var _ membership.SeasonRepository = (*GormSeasonRepository)(nil)
