package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PaymentModel is the GORM model for payments
type PaymentModel struct {
	AggregateModel
	RegistrationID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency              string          `gorm:"type:varchar(3);not null"`
	Status                string          `gorm:"type:varchar(30);not null;default:PENDING;index"`
	StripePaymentIntentID string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	StripeChargeID        string          `gorm:"type:varchar(100)"`
	FailureReason         string          `gorm:"type:text"`
	RefundedAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAt                *time.Time
	FailedAt              *time.Time
}

// TableName specifies the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *PaymentModel) ToDomain() *billing.Payment {
	payment := &billing.Payment{
		RegistrationID:        m.RegistrationID,
		MemberID:              m.MemberID,
		Amount:                m.Amount,
		Currency:              m.Currency,
		Status:                billing.PaymentStatus(m.Status),
		StripePaymentIntentID: m.StripePaymentIntentID,
		StripeChargeID:        m.StripeChargeID,
		FailureReason:         m.FailureReason,
		RefundedAmount:        m.RefundedAmount,
		PaidAt:                m.PaidAt,
		FailedAt:              m.FailedAt,
	}
	m.PopulateAggregateRoot(&payment.BaseAggregateRoot)
	return payment
}

// FromDomain populates the persistence model from a domain aggregate
func (m *PaymentModel) FromDomain(payment *billing.Payment) {
	m.FromDomainAggregateRoot(payment.BaseAggregateRoot)
	m.RegistrationID = payment.RegistrationID
	m.MemberID = payment.MemberID
	m.Amount = payment.Amount
	m.Currency = payment.Currency
	m.Status = payment.Status.String()
	m.StripePaymentIntentID = payment.StripePaymentIntentID
	m.StripeChargeID = payment.StripeChargeID
	m.FailureReason = payment.FailureReason
	m.RefundedAmount = payment.RefundedAmount
	m.PaidAt = payment.PaidAt
	m.FailedAt = payment.FailedAt
}

// RefundModel is the GORM model for refunds
type RefundModel struct {
	AggregateModel
	PaymentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	RegistrationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	Reason         string          `gorm:"type:text;not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:PENDING;index"`
	StripeRefundID string          `gorm:"type:varchar(100);index"`
	FailureReason  string          `gorm:"type:text"`
	CompletedAt    *time.Time
}

// TableName specifies the table name for GORM
func (RefundModel) TableName() string {
	return "refunds"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *RefundModel) ToDomain() *billing.Refund {
	refund := &billing.Refund{
		PaymentID:      m.PaymentID,
		RegistrationID: m.RegistrationID,
		MemberID:       m.MemberID,
		Amount:         m.Amount,
		Currency:       m.Currency,
		Reason:         m.Reason,
		Status:         billing.RefundStatus(m.Status),
		StripeRefundID: m.StripeRefundID,
		FailureReason:  m.FailureReason,
		CompletedAt:    m.CompletedAt,
	}
	m.PopulateAggregateRoot(&refund.BaseAggregateRoot)
	return refund
}

// FromDomain populates the persistence model from a domain aggregate
func (m *RefundModel) FromDomain(refund *billing.Refund) {
	m.FromDomainAggregateRoot(refund.BaseAggregateRoot)
	m.PaymentID = refund.PaymentID
	m.RegistrationID = refund.RegistrationID
	m.MemberID = refund.MemberID
	m.Amount = refund.Amount
	m.Currency = refund.Currency
	m.Reason = refund.Reason
	m.Status = refund.Status.String()
	m.StripeRefundID = refund.StripeRefundID
	m.FailureReason = refund.FailureReason
	m.CompletedAt = refund.CompletedAt
}

// PaymentPlanModel is the GORM model for payment plans
type PaymentPlanModel struct {
	AggregateModel
	RegistrationID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	MemberID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	TotalAmount    decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	Currency       string             `gorm:"type:varchar(3);not null"`
	Status         string             `gorm:"type:varchar(20);not null;default:ACTIVE;index"`
	Installments   []InstallmentModel `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (PaymentPlanModel) TableName() string {
	return "payment_plans"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *PaymentPlanModel) ToDomain() *billing.PaymentPlan {
	plan := &billing.PaymentPlan{
		RegistrationID: m.RegistrationID,
		MemberID:       m.MemberID,
		TotalAmount:    m.TotalAmount,
		Currency:       m.Currency,
		Status:         billing.PaymentPlanStatus(m.Status),
	}
	m.PopulateAggregateRoot(&plan.BaseAggregateRoot)

	plan.Installments = make([]billing.Installment, 0, len(m.Installments))
	for i := range m.Installments {
		plan.Installments = append(plan.Installments, m.Installments[i].ToDomain())
	}
	return plan
}

// FromDomain populates the persistence model from a domain aggregate
func (m *PaymentPlanModel) FromDomain(plan *billing.PaymentPlan) {
	m.FromDomainAggregateRoot(plan.BaseAggregateRoot)
	m.RegistrationID = plan.RegistrationID
	m.MemberID = plan.MemberID
	m.TotalAmount = plan.TotalAmount
	m.Currency = plan.Currency
	m.Status = plan.Status.String()

	m.Installments = make([]InstallmentModel, 0, len(plan.Installments))
	for i := range plan.Installments {
		var im InstallmentModel
		im.FromDomain(&plan.Installments[i])
		m.Installments = append(m.Installments, im)
	}
}

// InstallmentModel is the GORM model for payment plan installments
type InstallmentModel struct {
	BaseModel
	PlanID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence              int             `gorm:"not null"`
	Amount                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate               time.Time       `gorm:"not null;index:idx_installments_status_due,priority:2"`
	Status                string          `gorm:"type:varchar(20);not null;default:SCHEDULED;index:idx_installments_status_due,priority:1"`
	StripePaymentIntentID string          `gorm:"type:varchar(100)"`
	PaymentID             *uuid.UUID      `gorm:"type:uuid"`
	PaidAt                *time.Time
	FailureReason         string `gorm:"type:text"`
}

// TableName specifies the table name for GORM
func (InstallmentModel) TableName() string {
	return "payment_plan_installments"
}

// ToDomain converts the persistence model to a domain entity
func (m *InstallmentModel) ToDomain() billing.Installment {
	return billing.Installment{
		BaseEntity:            m.BaseModel.ToDomain(),
		PlanID:                m.PlanID,
		Sequence:              m.Sequence,
		Amount:                m.Amount,
		DueDate:               m.DueDate,
		Status:                billing.InstallmentStatus(m.Status),
		StripePaymentIntentID: m.StripePaymentIntentID,
		PaymentID:             m.PaymentID,
		PaidAt:                m.PaidAt,
		FailureReason:         m.FailureReason,
	}
}

// FromDomain populates the persistence model from a domain entity
func (m *InstallmentModel) FromDomain(inst *billing.Installment) {
	m.FromDomainBaseEntity(inst.BaseEntity)
	m.PlanID = inst.PlanID
	m.Sequence = inst.Sequence
	m.Amount = inst.Amount
	m.DueDate = inst.DueDate
	m.Status = inst.Status.String()
	m.StripePaymentIntentID = inst.StripePaymentIntentID
	m.PaymentID = inst.PaymentID
	m.PaidAt = inst.PaidAt
	m.FailureReason = inst.FailureReason
}
