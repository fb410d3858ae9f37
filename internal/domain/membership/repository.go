package membership

import (
	"context"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// MemberFilter defines filtering options for member queries
type MemberFilter struct {
	shared.Filter
	Status *MemberStatus
	Email  string
}

// MemberRepository defines the interface for member persistence
type MemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
	FindAll(ctx context.Context, filter MemberFilter) ([]Member, int64, error)
	Save(ctx context.Context, member *Member) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SeasonRepository defines the interface for season persistence
type SeasonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Season, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Season, int64, error)
	Save(ctx context.Context, season *Season) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter defines filtering options for product queries
type ProductFilter struct {
	shared.Filter
	Active *bool
}

// ProductRepository defines the interface for membership product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MembershipProduct, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]MembershipProduct, int64, error)
	Save(ctx context.Context, product *MembershipProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistrationFilter defines filtering options for registration queries
type RegistrationFilter struct {
	shared.Filter
	MemberID *uuid.UUID
	SeasonID *uuid.UUID
	Status   *RegistrationStatus
}

// RegistrationRepository defines the interface for registration persistence
type RegistrationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Registration, error)
	FindByReference(ctx context.Context, reference string) (*Registration, error)
	FindByMemberAndSeason(ctx context.Context, memberID, seasonID uuid.UUID) (*Registration, error)
	FindAll(ctx context.Context, filter RegistrationFilter) ([]Registration, int64, error)
	Save(ctx context.Context, registration *Registration) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextReference generates the next registration reference number
	NextReference(ctx context.Context) (string, error)
}
