package membership

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MemberCreatedEvent is raised when a new member is created
type MemberCreatedEvent struct {
	shared.BaseDomainEvent
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// EventType returns the event type name
func (e *MemberCreatedEvent) EventType() string {
	return "MemberCreated"
}

// NewMemberCreatedEvent creates a new MemberCreatedEvent
func NewMemberCreatedEvent(m *Member) *MemberCreatedEvent {
	return &MemberCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("MemberCreated", "Member", m.ID),
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Email:           m.Email,
	}
}

// RegistrationCreatedEvent is raised when a draft registration is created
type RegistrationCreatedEvent struct {
	shared.BaseDomainEvent
	Reference string    `json:"reference"`
	MemberID  uuid.UUID `json:"member_id"`
	SeasonID  uuid.UUID `json:"season_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// EventType returns the event type name
func (e *RegistrationCreatedEvent) EventType() string {
	return "RegistrationCreated"
}

// NewRegistrationCreatedEvent creates a new RegistrationCreatedEvent
func NewRegistrationCreatedEvent(r *Registration) *RegistrationCreatedEvent {
	return &RegistrationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RegistrationCreated", "Registration", r.ID),
		Reference:       r.Reference,
		MemberID:        r.MemberID,
		SeasonID:        r.SeasonID,
		ProductID:       r.ProductID,
	}
}

// RegistrationSubmittedEvent is raised when a registration is submitted
// for payment with its fee snapshotted
type RegistrationSubmittedEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	MemberID  uuid.UUID       `json:"member_id"`
	SeasonID  uuid.UUID       `json:"season_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// EventType returns the event type name
func (e *RegistrationSubmittedEvent) EventType() string {
	return "RegistrationSubmitted"
}

// NewRegistrationSubmittedEvent creates a new RegistrationSubmittedEvent
func NewRegistrationSubmittedEvent(r *Registration) *RegistrationSubmittedEvent {
	return &RegistrationSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RegistrationSubmitted", "Registration", r.ID),
		Reference:       r.Reference,
		MemberID:        r.MemberID,
		SeasonID:        r.SeasonID,
		ProductID:       r.ProductID,
		Amount:          r.Amount,
		Currency:        r.Currency,
	}
}

// RegistrationPaidEvent is raised when payment is received for a
// registration. The accounting staging writer listens for it to insert
// invoice and payment staging rows.
type RegistrationPaidEvent struct {
	shared.BaseDomainEvent
	Reference   string          `json:"reference"`
	MemberID    uuid.UUID       `json:"member_id"`
	SeasonID    uuid.UUID       `json:"season_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	AccountCode string          `json:"account_code"`
	PaidAt      time.Time       `json:"paid_at"`
	OnPlan      bool            `json:"on_payment_plan"`
}

// EventType returns the event type name
func (e *RegistrationPaidEvent) EventType() string {
	return "RegistrationPaid"
}

// NewRegistrationPaidEvent creates a new RegistrationPaidEvent
func NewRegistrationPaidEvent(r *Registration) *RegistrationPaidEvent {
	var paymentID uuid.UUID
	if r.PaymentID != nil {
		paymentID = *r.PaymentID
	}
	var paidAt time.Time
	if r.PaidAt != nil {
		paidAt = *r.PaidAt
	}
	return &RegistrationPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RegistrationPaid", "Registration", r.ID),
		Reference:       r.Reference,
		MemberID:        r.MemberID,
		SeasonID:        r.SeasonID,
		ProductID:       r.ProductID,
		PaymentID:       paymentID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		AccountCode:     r.AccountCode,
		PaidAt:          paidAt,
		OnPlan:          r.OnPaymentPlan,
	}
}

// RegistrationCancelledEvent is raised when a registration is cancelled
type RegistrationCancelledEvent struct {
	shared.BaseDomainEvent
	Reference string    `json:"reference"`
	MemberID  uuid.UUID `json:"member_id"`
	Reason    string    `json:"reason"`
	WasPaid   bool      `json:"was_paid"`
}

// EventType returns the event type name
func (e *RegistrationCancelledEvent) EventType() string {
	return "RegistrationCancelled"
}

// NewRegistrationCancelledEvent creates a new RegistrationCancelledEvent
func NewRegistrationCancelledEvent(r *Registration) *RegistrationCancelledEvent {
	return &RegistrationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RegistrationCancelled", "Registration", r.ID),
		Reference:       r.Reference,
		MemberID:        r.MemberID,
		Reason:          r.CancelReason,
		WasPaid:         r.PaymentID != nil,
	}
}
