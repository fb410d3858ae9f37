package membership

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// SeasonService handles season-related use cases
type SeasonService struct {
	seasonRepo membership.SeasonRepository
}

// NewSeasonService creates a new season service
func NewSeasonService(seasonRepo membership.SeasonRepository) *SeasonService {
	return &SeasonService{seasonRepo: seasonRepo}
}

// CreateSeason creates a new season
func (s *SeasonService) CreateSeason(ctx context.Context, req CreateSeasonRequest) (*SeasonResponse, error) {
	season, err := membership.NewSeason(
		req.Name,
		req.StartDate,
		req.EndDate,
		req.RegistrationOpensAt,
		req.RegistrationClosesAt,
	)
	if err != nil {
		return nil, err
	}

	if err := s.seasonRepo.Save(ctx, season); err != nil {
		return nil, fmt.Errorf("failed to save season: %w", err)
	}

	response := ToSeasonResponse(season)
	return &response, nil
}

// GetSeason retrieves a season by ID
func (s *SeasonService) GetSeason(ctx context.Context, id uuid.UUID) (*SeasonResponse, error) {
	season, err := s.seasonRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSeasonResponse(season)
	return &response, nil
}

// ListSeasons retrieves seasons with pagination
func (s *SeasonService) ListSeasons(ctx context.Context, filter shared.Filter) (*shared.Paginated[SeasonResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	seasons, total, err := s.seasonRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}

	result := shared.NewPaginated(ToSeasonResponses(seasons), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateSeason updates a season's name or registration window
func (s *SeasonService) UpdateSeason(ctx context.Context, id uuid.UUID, req UpdateSeasonRequest) (*SeasonResponse, error) {
	season, err := s.seasonRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := season.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.RegistrationOpensAt != nil || req.RegistrationClosesAt != nil {
		opensAt := season.RegistrationOpensAt
		closesAt := season.RegistrationClosesAt
		if req.RegistrationOpensAt != nil {
			opensAt = *req.RegistrationOpensAt
		}
		if req.RegistrationClosesAt != nil {
			closesAt = *req.RegistrationClosesAt
		}
		if err := season.UpdateWindow(opensAt, closesAt); err != nil {
			return nil, err
		}
	}

	if err := s.seasonRepo.Save(ctx, season); err != nil {
		return nil, fmt.Errorf("failed to save season: %w", err)
	}

	response := ToSeasonResponse(season)
	return &response, nil
}

// DeleteSeason deletes a season
func (s *SeasonService) DeleteSeason(ctx context.Context, id uuid.UUID) error {
	if _, err := s.seasonRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.seasonRepo.Delete(ctx, id)
}
