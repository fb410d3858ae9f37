package membership

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// DocumentStore is the port to object storage for member paperwork
type DocumentStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// MemberService handles member-related use cases
type MemberService struct {
	memberRepo membership.MemberRepository
	documents  DocumentStore
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo membership.MemberRepository, documents DocumentStore) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		documents:  documents,
	}
}

// CreateMember creates a new member
func (s *MemberService) CreateMember(ctx context.Context, req CreateMemberRequest) (*MemberResponse, error) {
	exists, err := s.memberRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check member existence: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_EMAIL", "A member with this email already exists")
	}

	member, err := membership.NewMember(
		req.FirstName,
		req.LastName,
		req.Email,
		req.Phone,
		req.DateOfBirth,
		membership.EmergencyContact{
			Name:  req.EmergencyContactName,
			Phone: req.EmergencyContactPhone,
		},
	)
	if err != nil {
		return nil, err
	}

	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}

	response := ToMemberResponse(member)
	return &response, nil
}

// GetMember retrieves a member by ID
func (s *MemberService) GetMember(ctx context.Context, id uuid.UUID) (*MemberResponse, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToMemberResponse(member)
	return &response, nil
}

// ListMembers retrieves members with filtering and pagination
func (s *MemberService) ListMembers(ctx context.Context, filter MemberListFilter) (*shared.Paginated[MemberResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := membership.MemberFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Email: filter.Email,
	}
	if filter.Status != "" {
		status := membership.MemberStatus(filter.Status)
		domainFilter.Status = &status
	}

	members, total, err := s.memberRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	result := shared.NewPaginated(ToMemberResponses(members), total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateMember updates a member's contact details
func (s *MemberService) UpdateMember(ctx context.Context, id uuid.UUID, req UpdateMemberRequest) (*MemberResponse, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email := member.Email
	if req.Email != nil {
		email = *req.Email
	}
	phone := member.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	emergency := member.EmergencyContact
	if req.EmergencyContactName != nil {
		emergency.Name = *req.EmergencyContactName
	}
	if req.EmergencyContactPhone != nil {
		emergency.Phone = *req.EmergencyContactPhone
	}

	if req.Email != nil && email != member.Email {
		exists, err := s.memberRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check member existence: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_EMAIL", "A member with this email already exists")
		}
	}

	if err := member.UpdateContact(email, phone, emergency); err != nil {
		return nil, err
	}

	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}

	response := ToMemberResponse(member)
	return &response, nil
}

// DeactivateMember marks a member as inactive
func (s *MemberService) DeactivateMember(ctx context.Context, id uuid.UUID) error {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := member.Deactivate(); err != nil {
		return err
	}
	return s.memberRepo.Save(ctx, member)
}

// ReactivateMember restores an inactive member
func (s *MemberService) ReactivateMember(ctx context.Context, id uuid.UUID) error {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := member.Reactivate(); err != nil {
		return err
	}
	return s.memberRepo.Save(ctx, member)
}

// ArchiveMember removes a member from active rolls
func (s *MemberService) ArchiveMember(ctx context.Context, id uuid.UUID) error {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	member.Archive()
	return s.memberRepo.Save(ctx, member)
}

// UploadDocument stores registration paperwork for a member and records
// the storage key on the member record
func (s *MemberService) UploadDocument(ctx context.Context, id uuid.UUID, filename, contentType string, body io.Reader) (*MemberResponse, error) {
	if s.documents == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}

	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("members/%s/%s", member.ID, filename)
	if err := s.documents.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	if err := member.AttachDocument(key); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}

	response := ToMemberResponse(member)
	return &response, nil
}

// DocumentURL returns a presigned download URL for a member's paperwork
func (s *MemberService) DocumentURL(ctx context.Context, id uuid.UUID) (string, error) {
	if s.documents == nil {
		return "", shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}

	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if member.DocumentKey == "" {
		return "", shared.ErrNotFound
	}

	url, err := s.documents.PresignGet(ctx, member.DocumentKey)
	if err != nil {
		return "", fmt.Errorf("failed to presign document: %w", err)
	}
	return url, nil
}
