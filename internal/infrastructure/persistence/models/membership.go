package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/shopspring/decimal"
)

// MemberModel is the GORM model for members
type MemberModel struct {
	AggregateModel
	FirstName             string    `gorm:"type:varchar(100);not null"`
	LastName              string    `gorm:"type:varchar(100);not null"`
	Email                 string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone                 string    `gorm:"type:varchar(50)"`
	DateOfBirth           time.Time `gorm:"not null"`
	EmergencyContactName  string    `gorm:"type:varchar(200)"`
	EmergencyContactPhone string    `gorm:"type:varchar(50)"`
	Status                string    `gorm:"type:varchar(20);not null;default:ACTIVE;index"`
	DocumentKey           string    `gorm:"type:varchar(500)"`
}

// TableName specifies the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *MemberModel) ToDomain() *membership.Member {
	member := &membership.Member{
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		Phone:       m.Phone,
		DateOfBirth: m.DateOfBirth,
		EmergencyContact: membership.EmergencyContact{
			Name:  m.EmergencyContactName,
			Phone: m.EmergencyContactPhone,
		},
		Status:      membership.MemberStatus(m.Status),
		DocumentKey: m.DocumentKey,
	}
	m.PopulateAggregateRoot(&member.BaseAggregateRoot)
	return member
}

// FromDomain populates the persistence model from a domain aggregate
func (m *MemberModel) FromDomain(member *membership.Member) {
	m.FromDomainAggregateRoot(member.BaseAggregateRoot)
	m.FirstName = member.FirstName
	m.LastName = member.LastName
	m.Email = member.Email
	m.Phone = member.Phone
	m.DateOfBirth = member.DateOfBirth
	m.EmergencyContactName = member.EmergencyContact.Name
	m.EmergencyContactPhone = member.EmergencyContact.Phone
	m.Status = member.Status.String()
	m.DocumentKey = member.DocumentKey
}

// SeasonModel is the GORM model for seasons
type SeasonModel struct {
	AggregateModel
	Name                 string    `gorm:"type:varchar(100);not null"`
	StartDate            time.Time `gorm:"not null"`
	EndDate              time.Time `gorm:"not null"`
	RegistrationOpensAt  time.Time `gorm:"not null"`
	RegistrationClosesAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (SeasonModel) TableName() string {
	return "seasons"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *SeasonModel) ToDomain() *membership.Season {
	season := &membership.Season{
		Name:                 m.Name,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		RegistrationOpensAt:  m.RegistrationOpensAt,
		RegistrationClosesAt: m.RegistrationClosesAt,
	}
	m.PopulateAggregateRoot(&season.BaseAggregateRoot)
	return season
}

// FromDomain populates the persistence model from a domain aggregate
func (m *SeasonModel) FromDomain(season *membership.Season) {
	m.FromDomainAggregateRoot(season.BaseAggregateRoot)
	m.Name = season.Name
	m.StartDate = season.StartDate
	m.EndDate = season.EndDate
	m.RegistrationOpensAt = season.RegistrationOpensAt
	m.RegistrationClosesAt = season.RegistrationClosesAt
}

// ProductModel is the GORM model for membership products
type ProductModel struct {
	AggregateModel
	Name              string          `gorm:"type:varchar(100);not null"`
	Description       string          `gorm:"type:text"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency          string          `gorm:"type:varchar(3);not null"`
	AccountCode       string          `gorm:"type:varchar(20);not null"`
	MinAge            *int
	MaxAge            *int
	Active            bool `gorm:"not null;default:true;index"`
	AllowInstallments bool `gorm:"not null;default:false"`
}

// TableName specifies the table name for GORM
func (ProductModel) TableName() string {
	return "membership_products"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *ProductModel) ToDomain() *membership.MembershipProduct {
	product := &membership.MembershipProduct{
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		Currency:          m.Currency,
		AccountCode:       m.AccountCode,
		MinAge:            m.MinAge,
		MaxAge:            m.MaxAge,
		Active:            m.Active,
		AllowInstallments: m.AllowInstallments,
	}
	m.PopulateAggregateRoot(&product.BaseAggregateRoot)
	return product
}

// FromDomain populates the persistence model from a domain aggregate
func (m *ProductModel) FromDomain(product *membership.MembershipProduct) {
	m.FromDomainAggregateRoot(product.BaseAggregateRoot)
	m.Name = product.Name
	m.Description = product.Description
	m.Price = product.Price
	m.Currency = product.Currency
	m.AccountCode = product.AccountCode
	m.MinAge = product.MinAge
	m.MaxAge = product.MaxAge
	m.Active = product.Active
	m.AllowInstallments = product.AllowInstallments
}

// RegistrationModel is the GORM model for registrations
type RegistrationModel struct {
	AggregateModel
	Reference     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	MemberID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_registrations_member_season,priority:1"`
	SeasonID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_registrations_member_season,priority:2"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;default:draft;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency      string          `gorm:"type:varchar(3)"`
	AccountCode   string          `gorm:"type:varchar(20)"`
	PaymentID     *uuid.UUID      `gorm:"type:uuid;index"`
	SubmittedAt   *time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:text"`
	OnPaymentPlan bool   `gorm:"not null;default:false"`
}

// TableName specifies the table name for GORM
func (RegistrationModel) TableName() string {
	return "registrations"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *RegistrationModel) ToDomain() *membership.Registration {
	reg := &membership.Registration{
		Reference:     m.Reference,
		MemberID:      m.MemberID,
		SeasonID:      m.SeasonID,
		ProductID:     m.ProductID,
		Status:        membership.RegistrationStatus(m.Status),
		Amount:        m.Amount,
		Currency:      m.Currency,
		AccountCode:   m.AccountCode,
		PaymentID:     m.PaymentID,
		SubmittedAt:   m.SubmittedAt,
		PaidAt:        m.PaidAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		OnPaymentPlan: m.OnPaymentPlan,
	}
	m.PopulateAggregateRoot(&reg.BaseAggregateRoot)
	return reg
}

// FromDomain populates the persistence model from a domain aggregate
func (m *RegistrationModel) FromDomain(reg *membership.Registration) {
	m.FromDomainAggregateRoot(reg.BaseAggregateRoot)
	m.Reference = reg.Reference
	m.MemberID = reg.MemberID
	m.SeasonID = reg.SeasonID
	m.ProductID = reg.ProductID
	m.Status = reg.Status.String()
	m.Amount = reg.Amount
	m.Currency = reg.Currency
	m.AccountCode = reg.AccountCode
	m.PaymentID = reg.PaymentID
	m.SubmittedAt = reg.SubmittedAt
	m.PaidAt = reg.PaidAt
	m.CancelledAt = reg.CancelledAt
	m.CancelReason = reg.CancelReason
	m.OnPaymentPlan = reg.OnPaymentPlan
}
