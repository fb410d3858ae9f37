package membership

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Member DTOs
// =============================================================================

// CreateMemberRequest represents a request to create a new member
type CreateMemberRequest struct {
	FirstName             string    `json:"first_name" binding:"required,min=1,max=100"`
	LastName              string    `json:"last_name" binding:"required,min=1,max=100"`
	Email                 string    `json:"email" binding:"required,email,max=254"`
	Phone                 string    `json:"phone" binding:"max=50"`
	DateOfBirth           time.Time `json:"date_of_birth" binding:"required"`
	EmergencyContactName  string    `json:"emergency_contact_name" binding:"required,max=200"`
	EmergencyContactPhone string    `json:"emergency_contact_phone" binding:"required,max=50"`
}

// UpdateMemberRequest represents a request to update a member's contact details
type UpdateMemberRequest struct {
	Email                 *string `json:"email" binding:"omitempty,email,max=254"`
	Phone                 *string `json:"phone" binding:"omitempty,max=50"`
	EmergencyContactName  *string `json:"emergency_contact_name" binding:"omitempty,max=200"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" binding:"omitempty,max=50"`
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	ID                    uuid.UUID `json:"id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	FullName              string    `json:"full_name"`
	Email                 string    `json:"email"`
	Phone                 string    `json:"phone"`
	DateOfBirth           time.Time `json:"date_of_birth"`
	EmergencyContactName  string    `json:"emergency_contact_name"`
	EmergencyContactPhone string    `json:"emergency_contact_phone"`
	Status                string    `json:"status"`
	HasDocument           bool      `json:"has_document"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// MemberListFilter represents filter options for member list
type MemberListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED"`
	Email    string `form:"email" binding:"omitempty,email"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToMemberResponse converts a domain Member to MemberResponse
func ToMemberResponse(m *membership.Member) MemberResponse {
	return MemberResponse{
		ID:                    m.ID,
		FirstName:             m.FirstName,
		LastName:              m.LastName,
		FullName:              m.FullName(),
		Email:                 m.Email,
		Phone:                 m.Phone,
		DateOfBirth:           m.DateOfBirth,
		EmergencyContactName:  m.EmergencyContact.Name,
		EmergencyContactPhone: m.EmergencyContact.Phone,
		Status:                m.Status.String(),
		HasDocument:           m.DocumentKey != "",
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// ToMemberResponses converts a slice of members
func ToMemberResponses(members []membership.Member) []MemberResponse {
	responses := make([]MemberResponse, len(members))
	for i := range members {
		responses[i] = ToMemberResponse(&members[i])
	}
	return responses
}

// =============================================================================
// Season DTOs
// =============================================================================

// CreateSeasonRequest represents a request to create a season
type CreateSeasonRequest struct {
	Name                 string    `json:"name" binding:"required,min=1,max=200"`
	StartDate            time.Time `json:"start_date" binding:"required"`
	EndDate              time.Time `json:"end_date" binding:"required"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at" binding:"required"`
	RegistrationClosesAt time.Time `json:"registration_closes_at" binding:"required"`
}

// UpdateSeasonRequest represents a request to update a season
type UpdateSeasonRequest struct {
	Name                 *string    `json:"name" binding:"omitempty,min=1,max=200"`
	RegistrationOpensAt  *time.Time `json:"registration_opens_at"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at"`
}

// SeasonResponse represents a season in API responses
type SeasonResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `json:"registration_closes_at"`
	OpenForRegistration  bool      `json:"open_for_registration"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ToSeasonResponse converts a domain Season to SeasonResponse
func ToSeasonResponse(s *membership.Season) SeasonResponse {
	return SeasonResponse{
		ID:                   s.ID,
		Name:                 s.Name,
		StartDate:            s.StartDate,
		EndDate:              s.EndDate,
		RegistrationOpensAt:  s.RegistrationOpensAt,
		RegistrationClosesAt: s.RegistrationClosesAt,
		OpenForRegistration:  s.IsOpenForRegistration(time.Now()),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// ToSeasonResponses converts a slice of seasons
func ToSeasonResponses(seasons []membership.Season) []SeasonResponse {
	responses := make([]SeasonResponse, len(seasons))
	for i := range seasons {
		responses[i] = ToSeasonResponse(&seasons[i])
	}
	return responses
}

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a membership product
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Description       string          `json:"description" binding:"max=1000"`
	Price             decimal.Decimal `json:"price" binding:"required"`
	Currency          string          `json:"currency" binding:"required,len=3"`
	AccountCode       string          `json:"account_code" binding:"required,max=20"`
	MinAge            *int            `json:"min_age" binding:"omitempty,min=0,max=120"`
	MaxAge            *int            `json:"max_age" binding:"omitempty,min=0,max=120"`
	AllowInstallments bool            `json:"allow_installments"`
}

// UpdateProductRequest represents a request to update a membership product
type UpdateProductRequest struct {
	Price       *decimal.Decimal `json:"price"`
	AccountCode *string          `json:"account_code" binding:"omitempty,max=20"`
	MinAge      *int             `json:"min_age" binding:"omitempty,min=0,max=120"`
	MaxAge      *int             `json:"max_age" binding:"omitempty,min=0,max=120"`
}

// ProductResponse represents a membership product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	AccountCode       string          `json:"account_code"`
	MinAge            *int            `json:"min_age"`
	MaxAge            *int            `json:"max_age"`
	Active            bool            `json:"active"`
	AllowInstallments bool            `json:"allow_installments"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain MembershipProduct to ProductResponse
func ToProductResponse(p *membership.MembershipProduct) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		Currency:          p.Currency,
		AccountCode:       p.AccountCode,
		MinAge:            p.MinAge,
		MaxAge:            p.MaxAge,
		Active:            p.Active,
		AllowInstallments: p.AllowInstallments,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []membership.MembershipProduct) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// =============================================================================
// Registration DTOs
// =============================================================================

// CreateRegistrationRequest represents a request to create a draft registration
type CreateRegistrationRequest struct {
	MemberID  uuid.UUID `json:"member_id" binding:"required"`
	SeasonID  uuid.UUID `json:"season_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// CancelRegistrationRequest represents a request to cancel a registration
type CancelRegistrationRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RegistrationResponse represents a registration in API responses
type RegistrationResponse struct {
	ID            uuid.UUID       `json:"id"`
	Reference     string          `json:"reference"`
	MemberID      uuid.UUID       `json:"member_id"`
	SeasonID      uuid.UUID       `json:"season_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	AccountCode   string          `json:"account_code"`
	PaymentID     *uuid.UUID      `json:"payment_id"`
	OnPaymentPlan bool            `json:"on_payment_plan"`
	SubmittedAt   *time.Time      `json:"submitted_at"`
	PaidAt        *time.Time      `json:"paid_at"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RegistrationListFilter represents filter options for registration list
type RegistrationListFilter struct {
	MemberID *uuid.UUID `form:"member_id"`
	SeasonID *uuid.UUID `form:"season_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=draft pending_payment paid cancelled"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToRegistrationResponse converts a domain Registration to RegistrationResponse
func ToRegistrationResponse(r *membership.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:            r.ID,
		Reference:     r.Reference,
		MemberID:      r.MemberID,
		SeasonID:      r.SeasonID,
		ProductID:     r.ProductID,
		Status:        r.Status.String(),
		Amount:        r.Amount,
		Currency:      r.Currency,
		AccountCode:   r.AccountCode,
		PaymentID:     r.PaymentID,
		OnPaymentPlan: r.OnPaymentPlan,
		SubmittedAt:   r.SubmittedAt,
		PaidAt:        r.PaidAt,
		CancelledAt:   r.CancelledAt,
		CancelReason:  r.CancelReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToRegistrationResponses converts a slice of registrations
func ToRegistrationResponses(registrations []membership.Registration) []RegistrationResponse {
	responses := make([]RegistrationResponse, len(registrations))
	for i := range registrations {
		responses[i] = ToRegistrationResponse(&registrations[i])
	}
	return responses
}
