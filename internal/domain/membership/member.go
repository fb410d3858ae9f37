package membership

import (
	"fmt"
	"strings"
	"time"

	"github.com/rinkpass/backend/internal/domain/shared"
)

// MemberStatus represents the status of a member
type MemberStatus string

const (
	// MemberStatusActive indicates an active member
	MemberStatusActive MemberStatus = "ACTIVE"
	// MemberStatusInactive indicates a member who has lapsed
	MemberStatusInactive MemberStatus = "INACTIVE"
	// MemberStatusArchived indicates a member removed from active rolls
	MemberStatusArchived MemberStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid MemberStatus
func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInactive, MemberStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of MemberStatus
func (s MemberStatus) String() string {
	return string(s)
}

// EmergencyContact is required for anyone taking the ice
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Member represents a registered member of the association
type Member struct {
	shared.BaseAggregateRoot

	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	DateOfBirth      time.Time        `json:"date_of_birth"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	Status           MemberStatus     `json:"status"`

	// DocumentKey is the object storage key of uploaded registration
	// paperwork (waiver, proof of age), empty until uploaded
	DocumentKey string `json:"document_key"`
}

// NewMember creates a new active member
func NewMember(firstName, lastName, email, phone string, dateOfBirth time.Time, emergency EmergencyContact) (*Member, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
	}
	if !isValidEmail(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	if dateOfBirth.IsZero() || dateOfBirth.After(time.Now()) {
		return nil, shared.NewDomainError("INVALID_DATE_OF_BIRTH", "Date of birth must be in the past")
	}

	m := &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Phone:             strings.TrimSpace(phone),
		DateOfBirth:       dateOfBirth,
		EmergencyContact:  emergency,
		Status:            MemberStatusActive,
	}

	m.AddDomainEvent(NewMemberCreatedEvent(m))

	return m, nil
}

// FullName returns the member's display name
func (m *Member) FullName() string {
	return fmt.Sprintf("%s %s", m.FirstName, m.LastName)
}

// Age returns the member's age in whole years at the given date
func (m *Member) Age(at time.Time) int {
	years := at.Year() - m.DateOfBirth.Year()
	if at.YearDay() < m.DateOfBirth.YearDay() {
		years--
	}
	return years
}

// UpdateContact updates the member's contact details
func (m *Member) UpdateContact(email, phone string, emergency EmergencyContact) error {
	if !isValidEmail(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	m.Email = strings.ToLower(strings.TrimSpace(email))
	m.Phone = strings.TrimSpace(phone)
	m.EmergencyContact = emergency
	m.UpdatedAt = time.Now()
	return nil
}

// AttachDocument records the storage key of uploaded paperwork
func (m *Member) AttachDocument(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_DOCUMENT", "Document key cannot be empty")
	}
	m.DocumentKey = key
	m.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the member as inactive
func (m *Member) Deactivate() error {
	if m.Status == MemberStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate an archived member")
	}
	m.Status = MemberStatusInactive
	m.UpdatedAt = time.Now()
	return nil
}

// Reactivate restores an inactive member
func (m *Member) Reactivate() error {
	if m.Status == MemberStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Cannot reactivate an archived member")
	}
	m.Status = MemberStatusActive
	m.UpdatedAt = time.Now()
	return nil
}

// Archive removes the member from active rolls
func (m *Member) Archive() {
	m.Status = MemberStatusArchived
	m.UpdatedAt = time.Now()
}

// IsActive returns true if the member is active
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
