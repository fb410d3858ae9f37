package membership

import (
	"strings"
	"time"

	"github.com/rinkpass/backend/internal/domain/shared"
)

// Season represents a playing season that members register into.
// Registration is only accepted inside the open/close window.
type Season struct {
	shared.BaseAggregateRoot

	Name                 string    `json:"name"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `json:"registration_closes_at"`
}

// NewSeason creates a new season
func NewSeason(name string, startDate, endDate, opensAt, closesAt time.Time) (*Season, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Season name cannot be empty")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Season end date must be after start date")
	}
	if !closesAt.After(opensAt) {
		return nil, shared.NewDomainError("INVALID_DATES", "Registration close must be after open")
	}

	return &Season{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Name:                 strings.TrimSpace(name),
		StartDate:            startDate,
		EndDate:              endDate,
		RegistrationOpensAt:  opensAt,
		RegistrationClosesAt: closesAt,
	}, nil
}

// IsOpenForRegistration returns true if registrations are accepted at the given time
func (s *Season) IsOpenForRegistration(at time.Time) bool {
	return !at.Before(s.RegistrationOpensAt) && at.Before(s.RegistrationClosesAt)
}

// UpdateWindow adjusts the registration window
func (s *Season) UpdateWindow(opensAt, closesAt time.Time) error {
	if !closesAt.After(opensAt) {
		return shared.NewDomainError("INVALID_DATES", "Registration close must be after open")
	}
	s.RegistrationOpensAt = opensAt
	s.RegistrationClosesAt = closesAt
	s.UpdatedAt = time.Now()
	return nil
}

// Rename changes the season name
func (s *Season) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Season name cannot be empty")
	}
	s.Name = strings.TrimSpace(name)
	s.UpdatedAt = time.Now()
	return nil
}
