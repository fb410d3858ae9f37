package membership

import (
	"strings"
	"time"

	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MembershipProduct is a fee class a member can register under, for
// example Senior, Junior or Social. Each product carries the Xero revenue
// account code its invoices are posted to.
type MembershipProduct struct {
	shared.BaseAggregateRoot

	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	AccountCode string          `json:"account_code"`
	MinAge      *int            `json:"min_age"`
	MaxAge      *int            `json:"max_age"`
	Active      bool            `json:"active"`

	// AllowInstallments enables payment plans for this product
	AllowInstallments bool `json:"allow_installments"`
}

// NewMembershipProduct creates a new active membership product
func NewMembershipProduct(name, description string, price decimal.Decimal, currency, accountCode string) (*MembershipProduct, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.LessThan(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	if accountCode == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}

	return &MembershipProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Description:       description,
		Price:             price,
		Currency:          currency,
		AccountCode:       accountCode,
		Active:            true,
	}, nil
}

// SetAgeLimits restricts the product to an age band, nil means unbounded
func (p *MembershipProduct) SetAgeLimits(minAge, maxAge *int) error {
	if minAge != nil && maxAge != nil && *minAge > *maxAge {
		return shared.NewDomainError("INVALID_AGE_LIMITS", "Minimum age cannot exceed maximum age")
	}
	p.MinAge = minAge
	p.MaxAge = maxAge
	p.UpdatedAt = time.Now()
	return nil
}

// EligibleFor checks whether a member of the given age may register
func (p *MembershipProduct) EligibleFor(age int) bool {
	if p.MinAge != nil && age < *p.MinAge {
		return false
	}
	if p.MaxAge != nil && age > *p.MaxAge {
		return false
	}
	return true
}

// UpdatePricing changes the product's price and account code
func (p *MembershipProduct) UpdatePricing(price decimal.Decimal, accountCode string) error {
	if price.LessThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if accountCode == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	p.Price = price
	p.AccountCode = accountCode
	p.UpdatedAt = time.Now()
	return nil
}

// EnableInstallments allows payment plans on this product
func (p *MembershipProduct) EnableInstallments() {
	p.AllowInstallments = true
	p.UpdatedAt = time.Now()
}

// Deactivate hides the product from new registrations
func (p *MembershipProduct) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Activate makes the product available for registration
func (p *MembershipProduct) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}
