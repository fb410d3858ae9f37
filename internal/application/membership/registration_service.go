package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// RegistrationService handles registration use cases
type RegistrationService struct {
	registrationRepo membership.RegistrationRepository
	memberRepo       membership.MemberRepository
	seasonRepo       membership.SeasonRepository
	productRepo      membership.ProductRepository
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	registrationRepo membership.RegistrationRepository,
	memberRepo membership.MemberRepository,
	seasonRepo membership.SeasonRepository,
	productRepo membership.ProductRepository,
) *RegistrationService {
	return &RegistrationService{
		registrationRepo: registrationRepo,
		memberRepo:       memberRepo,
		seasonRepo:       seasonRepo,
		productRepo:      productRepo,
	}
}

// CreateRegistration creates a draft registration for a member, season and
// product after checking eligibility. One registration per member per season.
func (s *RegistrationService) CreateRegistration(ctx context.Context, req CreateRegistrationRequest) (*RegistrationResponse, error) {
	member, err := s.memberRepo.FindByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive() {
		return nil, shared.NewDomainError("MEMBER_INACTIVE", "Only active members can register")
	}

	season, err := s.seasonRepo.FindByID(ctx, req.SeasonID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is not available for registration")
	}
	if !product.EligibleFor(member.Age(season.StartDate)) {
		return nil, shared.NewDomainError("INELIGIBLE", "Member does not meet the product's age requirements")
	}

	existing, err := s.registrationRepo.FindByMemberAndSeason(ctx, req.MemberID, req.SeasonID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if existing != nil && existing.Status != membership.RegistrationStatusCancelled {
		return nil, shared.NewDomainError("DUPLICATE_REGISTRATION", "Member is already registered for this season")
	}

	reference, err := s.registrationRepo.NextReference(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate registration reference: %w", err)
	}

	registration, err := membership.NewRegistration(reference, req.MemberID, req.SeasonID, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Save(ctx, registration); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	response := ToRegistrationResponse(registration)
	return &response, nil
}

// SubmitRegistration submits a draft registration, snapshotting the product
// fee and moving it to pending_payment
func (s *RegistrationService) SubmitRegistration(ctx context.Context, id uuid.UUID) (*RegistrationResponse, error) {
	registration, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	season, err := s.seasonRepo.FindByID(ctx, registration.SeasonID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, registration.ProductID)
	if err != nil {
		return nil, err
	}

	if err := registration.Submit(season, product, time.Now()); err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Save(ctx, registration); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	response := ToRegistrationResponse(registration)
	return &response, nil
}

// CancelRegistration cancels a registration
func (s *RegistrationService) CancelRegistration(ctx context.Context, id uuid.UUID, req CancelRegistrationRequest) (*RegistrationResponse, error) {
	registration, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := registration.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.registrationRepo.Save(ctx, registration); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	response := ToRegistrationResponse(registration)
	return &response, nil
}

// GetRegistration retrieves a registration by ID
func (s *RegistrationService) GetRegistration(ctx context.Context, id uuid.UUID) (*RegistrationResponse, error) {
	registration, err := s.registrationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRegistrationResponse(registration)
	return &response, nil
}

// GetRegistrationByReference retrieves a registration by its reference number
func (s *RegistrationService) GetRegistrationByReference(ctx context.Context, reference string) (*RegistrationResponse, error) {
	registration, err := s.registrationRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	response := ToRegistrationResponse(registration)
	return &response, nil
}

// ListRegistrations retrieves registrations with filtering and pagination
func (s *RegistrationService) ListRegistrations(ctx context.Context, filter RegistrationListFilter) (*shared.Paginated[RegistrationResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := membership.RegistrationFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		MemberID: filter.MemberID,
		SeasonID: filter.SeasonID,
	}
	if filter.Status != "" {
		status := membership.RegistrationStatus(filter.Status)
		domainFilter.Status = &status
	}

	registrations, total, err := s.registrationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	result := shared.NewPaginated(ToRegistrationResponses(registrations), total, filter.Page, filter.PageSize)
	return &result, nil
}
