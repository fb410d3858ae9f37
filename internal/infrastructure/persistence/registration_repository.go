package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRegistrationRepository implements RegistrationRepository using GORM
type GormRegistrationRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormRegistrationRepository creates a new GormRegistrationRepository
func NewGormRegistrationRepository(db *gorm.DB) *GormRegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormRegistrationRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a registration by its ID
func (r *GormRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Registration, error) {
	var model models.RegistrationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference finds a registration by its reference number
func (r *GormRegistrationRepository) FindByReference(ctx context.Context, reference string) (*membership.Registration, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference cannot be empty")
	}
	var model models.RegistrationModel
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMemberAndSeason finds a member's registration in a season
func (r *GormRegistrationRepository) FindByMemberAndSeason(ctx context.Context, memberID, seasonID uuid.UUID) (*membership.Registration, error) {
	var model models.RegistrationModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ? AND season_id = ? AND status <> ?",
			memberID, seasonID, membership.RegistrationStatusCancelled.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds registrations matching the filter with a total count
func (r *GormRegistrationRepository) FindAll(ctx context.Context, filter membership.RegistrationFilter) ([]membership.Registration, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RegistrationModel{})

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.SeasonID != nil {
		query = query.Where("season_id = ?", *filter.SeasonID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var regModels []models.RegistrationModel
	if err := applyPaginationWithFields(query, filter.Filter, RegistrationSortFields).Find(&regModels).Error; err != nil {
		return nil, 0, err
	}

	registrations := make([]membership.Registration, len(regModels))
	for i := range regModels {
		registrations[i] = *regModels[i].ToDomain()
	}
	return registrations, total, nil
}

// Save creates or updates a registration, persisting pending domain events
// to the outbox in the same transaction
func (r *GormRegistrationRepository) Save(ctx context.Context, registration *membership.Registration) error {
	events := registration.GetDomainEvents()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.RegistrationModel
		model.FromDomain(registration)
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

	registration.ClearDomainEvents()
	return nil
}

// Delete deletes a registration
func (r *GormRegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RegistrationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextReference generates the next registration reference
// Format: REG-YYYY-NNNNN (e.g., REG-2026-00001)
func (r *GormRegistrationRepository) NextReference(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("REG-%d-", year)

	var last models.RegistrationModel
	err := r.db.WithContext(ctx).
		Model(&models.RegistrationModel{}).
		Where("reference LIKE ?", prefix+"%").
		Order("reference DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.Reference != "" {
		parts := strings.Split(last.Reference, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// Ensure GormRegistrationRepository implements RegistrationRepository
var _ membership.RegistrationRepository = (*GormRegistrationRepository)(nil)
