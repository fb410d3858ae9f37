package accounting

import (
	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StagingRecordType identifies which staging table a row belongs to
type StagingRecordType string

const (
	StagingRecordTypeInvoice StagingRecordType = "invoice"
	StagingRecordTypePayment StagingRecordType = "payment"
)

// InvoiceStagingCreatedEvent is raised when an invoice staging row is inserted
type InvoiceStagingCreatedEvent struct {
	shared.BaseDomainEvent
	Kind           InvoiceKind     `json:"kind"`
	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// EventType returns the event type name
func (e *InvoiceStagingCreatedEvent) EventType() string {
	return "InvoiceStagingCreated"
}

// NewInvoiceStagingCreatedEvent creates a new InvoiceStagingCreatedEvent
func NewInvoiceStagingCreatedEvent(i *InvoiceStaging) *InvoiceStagingCreatedEvent {
	return &InvoiceStagingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceStagingCreated", "InvoiceStaging", i.ID),
		Kind:            i.Kind,
		RegistrationID:  i.RegistrationID,
		MemberID:        i.MemberID,
		Amount:          i.Amount,
		Currency:        i.Currency,
		IdempotencyKey:  i.IdempotencyKey,
	}
}

// PaymentStagingCreatedEvent is raised when a payment staging row is inserted
type PaymentStagingCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceStagingID uuid.UUID       `json:"invoice_staging_id"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	MemberID         uuid.UUID       `json:"member_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	SyncStatus       SyncStatus      `json:"sync_status"`
	IdempotencyKey   string          `json:"idempotency_key"`
}

// EventType returns the event type name
func (e *PaymentStagingCreatedEvent) EventType() string {
	return "PaymentStagingCreated"
}

// NewPaymentStagingCreatedEvent creates a new PaymentStagingCreatedEvent
func NewPaymentStagingCreatedEvent(p *PaymentStaging) *PaymentStagingCreatedEvent {
	return &PaymentStagingCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("PaymentStagingCreated", "PaymentStaging", p.ID),
		InvoiceStagingID: p.InvoiceStagingID,
		PaymentID:        p.PaymentID,
		MemberID:         p.MemberID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		SyncStatus:       p.SyncStatus,
		IdempotencyKey:   p.IdempotencyKey,
	}
}

// StagingSyncExhaustedEvent is raised when a row runs out of automatic
// retries. Subscribers alert operators so the row can be fixed or ignored.
type StagingSyncExhaustedEvent struct {
	shared.BaseDomainEvent
	RecordType     StagingRecordType `json:"record_type"`
	IdempotencyKey string            `json:"idempotency_key"`
	SyncError      string            `json:"sync_error"`
	RetryCount     int               `json:"retry_count"`
}

// EventType returns the event type name
func (e *StagingSyncExhaustedEvent) EventType() string {
	return "StagingSyncExhausted"
}

// NewStagingSyncExhaustedEvent creates a new StagingSyncExhaustedEvent
func NewStagingSyncExhaustedEvent(rowID uuid.UUID, recordType StagingRecordType, idempotencyKey, syncErr string, retryCount int) *StagingSyncExhaustedEvent {
	aggType := "InvoiceStaging"
	if recordType == StagingRecordTypePayment {
		aggType = "PaymentStaging"
	}
	return &StagingSyncExhaustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("StagingSyncExhausted", aggType, rowID),
		RecordType:      recordType,
		IdempotencyKey:  idempotencyKey,
		SyncError:       syncErr,
		RetryCount:      retryCount,
	}
}
