package membership

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RegistrationStatus represents the lifecycle state of a registration
type RegistrationStatus string

const (
	// RegistrationStatusDraft indicates a registration still being filled in
	RegistrationStatusDraft RegistrationStatus = "draft"
	// RegistrationStatusPendingPayment indicates a submitted registration awaiting payment
	RegistrationStatusPendingPayment RegistrationStatus = "pending_payment"
	// RegistrationStatusPaid indicates payment was received
	RegistrationStatusPaid RegistrationStatus = "paid"
	// RegistrationStatusCancelled indicates the registration was cancelled
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

// IsValid checks if the status is a valid RegistrationStatus
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusDraft, RegistrationStatusPendingPayment,
		RegistrationStatusPaid, RegistrationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RegistrationStatus
func (s RegistrationStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the registration can no longer change state
func (s RegistrationStatus) IsTerminal() bool {
	return s == RegistrationStatusCancelled
}

// Registration represents a member's registration into a season under a
// membership product. The fee and account code are snapshotted from the
// product at submission time so later price changes do not affect it.
type Registration struct {
	shared.BaseAggregateRoot

	Reference string             `json:"reference"`
	MemberID  uuid.UUID          `json:"member_id"`
	SeasonID  uuid.UUID          `json:"season_id"`
	ProductID uuid.UUID          `json:"product_id"`
	Status    RegistrationStatus `json:"status"`

	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	AccountCode string          `json:"account_code"`

	// PaymentID links to the billing payment once paid
	PaymentID    *uuid.UUID `json:"payment_id"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	PaidAt       *time.Time `json:"paid_at"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CancelReason string     `json:"cancel_reason"`

	// OnPaymentPlan indicates the fee is collected in installments
	OnPaymentPlan bool `json:"on_payment_plan"`
}

// NewRegistration creates a draft registration
func NewRegistration(reference string, memberID, seasonID, productID uuid.UUID) (*Registration, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Registration reference cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if seasonID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SEASON", "Season ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	r := &Registration{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		MemberID:          memberID,
		SeasonID:          seasonID,
		ProductID:         productID,
		Status:            RegistrationStatusDraft,
		Amount:            decimal.Zero,
	}

	r.AddDomainEvent(NewRegistrationCreatedEvent(r))

	return r, nil
}

// Submit snapshots the product fee and moves the registration to
// pending_payment. The season must be open for registration.
func (r *Registration) Submit(season *Season, product *MembershipProduct, at time.Time) error {
	if r.Status != RegistrationStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit registration in %s status", r.Status))
	}
	if season == nil || season.ID != r.SeasonID {
		return shared.NewDomainError("INVALID_SEASON", "Season does not match registration")
	}
	if !season.IsOpenForRegistration(at) {
		return shared.ErrRegistrationClosed
	}
	if product == nil || product.ID != r.ProductID {
		return shared.NewDomainError("INVALID_PRODUCT", "Product does not match registration")
	}
	if !product.Active {
		return shared.NewDomainError("INVALID_PRODUCT", "Product is not available for registration")
	}

	r.Status = RegistrationStatusPendingPayment
	r.Amount = product.Price
	r.Currency = product.Currency
	r.AccountCode = product.AccountCode
	r.SubmittedAt = &at
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRegistrationSubmittedEvent(r))

	return nil
}

// SelectPaymentPlan marks the registration for installment collection.
// Only allowed before payment and only if the product permits it.
func (r *Registration) SelectPaymentPlan(product *MembershipProduct) error {
	if r.Status != RegistrationStatusPendingPayment {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot select payment plan in %s status", r.Status))
	}
	if product == nil || !product.AllowInstallments {
		return shared.NewDomainError("PAYMENT_PLAN_UNAVAILABLE", "Product does not allow payment plans")
	}
	r.OnPaymentPlan = true
	r.UpdatedAt = time.Now()
	return nil
}

// MarkPaid records payment receipt. Idempotent on repeated calls with the
// same payment so webhook replays are harmless.
func (r *Registration) MarkPaid(paymentID uuid.UUID, paidAt time.Time) error {
	if paymentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if r.Status == RegistrationStatusPaid {
		if r.PaymentID != nil && *r.PaymentID == paymentID {
			return nil
		}
		return shared.ErrDuplicatePayment
	}
	if r.Status != RegistrationStatusPendingPayment {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark registration paid in %s status", r.Status))
	}

	r.Status = RegistrationStatusPaid
	r.PaymentID = &paymentID
	r.PaidAt = &paidAt
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRegistrationPaidEvent(r))

	return nil
}

// Cancel cancels the registration
func (r *Registration) Cancel(reason string) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel registration in %s status", r.Status))
	}

	now := time.Now()
	r.Status = RegistrationStatusCancelled
	r.CancelReason = reason
	r.CancelledAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewRegistrationCancelledEvent(r))

	return nil
}

// IsPaid returns true if payment was received
func (r *Registration) IsPaid() bool {
	return r.Status == RegistrationStatusPaid
}
