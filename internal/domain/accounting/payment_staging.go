package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStaging is a write-ahead staging row for a Xero payment applied
// against a synced invoice. A payment row is never synced before the
// invoice row it references; sync runs skip it until the invoice carries
// a remote id. Installment payments are inserted as planned and promoted
// to pending once their due date passes and the charge succeeds.
type PaymentStaging struct {
	shared.BaseAggregateRoot

	InvoiceStagingID uuid.UUID       `json:"invoice_staging_id"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	RegistrationID   uuid.UUID       `json:"registration_id"`
	MemberID         uuid.UUID       `json:"member_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	BankAccountCode  string          `json:"bank_account_code"`
	PaidAt           time.Time       `json:"paid_at"`
	DueAt            *time.Time      `json:"due_at"`

	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       StagingMetadata `json:"staging_metadata"`

	SyncStatus  SyncStatus `json:"sync_status"`
	SyncError   string     `json:"sync_error"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	NextRetryAt *time.Time `json:"next_retry_at"`
	SyncedAt    *time.Time `json:"synced_at"`

	// XeroPaymentID is the remote payment id once synced
	XeroPaymentID string `json:"xero_payment_id"`
}

// NewPaymentStaging creates a pending payment staging row
func NewPaymentStaging(
	invoiceStagingID uuid.UUID,
	paymentID uuid.UUID,
	registrationID uuid.UUID,
	memberID uuid.UUID,
	amount decimal.Decimal,
	currency string,
	bankAccountCode string,
	paidAt time.Time,
	idempotencyKey string,
	metadata StagingMetadata,
) (*PaymentStaging, error) {
	ps, err := newPaymentStaging(invoiceStagingID, paymentID, registrationID, memberID,
		amount, currency, bankAccountCode, paidAt, idempotencyKey, metadata)
	if err != nil {
		return nil, err
	}

	ps.SyncStatus = SyncStatusPending
	ps.AddDomainEvent(NewPaymentStagingCreatedEvent(ps))

	return ps, nil
}

// NewPlannedPaymentStaging creates a planned payment staging row for a
// future-dated installment. It becomes pending via Promote once due.
func NewPlannedPaymentStaging(
	invoiceStagingID uuid.UUID,
	paymentID uuid.UUID,
	registrationID uuid.UUID,
	memberID uuid.UUID,
	amount decimal.Decimal,
	currency string,
	bankAccountCode string,
	dueAt time.Time,
	idempotencyKey string,
	metadata StagingMetadata,
) (*PaymentStaging, error) {
	ps, err := newPaymentStaging(invoiceStagingID, paymentID, registrationID, memberID,
		amount, currency, bankAccountCode, dueAt, idempotencyKey, metadata)
	if err != nil {
		return nil, err
	}

	ps.SyncStatus = SyncStatusPlanned
	ps.DueAt = &dueAt
	ps.AddDomainEvent(NewPaymentStagingCreatedEvent(ps))

	return ps, nil
}

func newPaymentStaging(
	invoiceStagingID uuid.UUID,
	paymentID uuid.UUID,
	registrationID uuid.UUID,
	memberID uuid.UUID,
	amount decimal.Decimal,
	currency string,
	bankAccountCode string,
	paidAt time.Time,
	idempotencyKey string,
	metadata StagingMetadata,
) (*PaymentStaging, error) {
	if invoiceStagingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE_STAGING", "Invoice staging ID cannot be empty")
	}
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	if bankAccountCode == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Bank account code cannot be empty")
	}
	if idempotencyKey == "" {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot be empty")
	}

	return &PaymentStaging{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceStagingID:  invoiceStagingID,
		PaymentID:         paymentID,
		RegistrationID:    registrationID,
		MemberID:          memberID,
		Amount:            amount,
		Currency:          currency,
		BankAccountCode:   bankAccountCode,
		PaidAt:            paidAt,
		IdempotencyKey:    idempotencyKey,
		Metadata:          metadata,
		MaxRetries:        StagingMaxRetries,
	}, nil
}

// Promote moves a planned installment row to pending once it is due
func (p *PaymentStaging) Promote(paidAt time.Time) error {
	if p.SyncStatus != SyncStatusPlanned {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot promote payment row in %s status", p.SyncStatus))
	}
	p.SyncStatus = SyncStatusPending
	p.PaidAt = paidAt
	p.UpdatedAt = time.Now()
	return nil
}

// MarkStaged claims the row for an in-flight sync run
func (p *PaymentStaging) MarkStaged() error {
	if !p.SyncStatus.CanTransitionTo(SyncStatusStaged) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot stage payment row in %s status", p.SyncStatus))
	}
	p.SyncStatus = SyncStatusStaged
	p.UpdatedAt = time.Now()
	return nil
}

// MarkSynced records acceptance by Xero and the remote payment id
func (p *PaymentStaging) MarkSynced(xeroPaymentID string) error {
	if !p.SyncStatus.CanTransitionTo(SyncStatusSynced) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark payment row synced in %s status", p.SyncStatus))
	}
	if xeroPaymentID == "" {
		return shared.NewDomainError("INVALID_XERO_ID", "Xero payment ID cannot be empty")
	}

	now := time.Now()
	p.SyncStatus = SyncStatusSynced
	p.XeroPaymentID = xeroPaymentID
	p.SyncError = ""
	p.NextRetryAt = nil
	p.SyncedAt = &now
	p.UpdatedAt = now
	return nil
}

// MarkFailed records a sync error and schedules the next retry
func (p *PaymentStaging) MarkFailed(syncErr string) error {
	if !p.SyncStatus.CanTransitionTo(SyncStatusFailed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail payment row in %s status", p.SyncStatus))
	}

	now := time.Now()
	p.SyncStatus = SyncStatusFailed
	p.SyncError = syncErr
	p.RetryCount++
	p.UpdatedAt = now

	if p.RetryCount >= p.MaxRetries {
		p.NextRetryAt = nil
		p.AddDomainEvent(NewStagingSyncExhaustedEvent(p.ID, StagingRecordTypePayment, p.IdempotencyKey, syncErr, p.RetryCount))
	} else {
		nextRetry := now.Add(stagingBackoff(p.RetryCount))
		p.NextRetryAt = &nextRetry
	}
	return nil
}

// Requeue returns a claimed row to pending without counting an attempt.
// Used when the run skips a payment whose invoice is not yet synced.
func (p *PaymentStaging) Requeue() error {
	if p.SyncStatus != SyncStatusStaged {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot requeue payment row in %s status", p.SyncStatus))
	}
	p.SyncStatus = SyncStatusPending
	p.UpdatedAt = time.Now()
	return nil
}

// ResetForRetry requeues a failed row regardless of its retry budget
func (p *PaymentStaging) ResetForRetry() error {
	if p.SyncStatus != SyncStatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Can only retry failed rows")
	}
	p.SyncStatus = SyncStatusPending
	p.RetryCount = 0
	p.SyncError = ""
	p.NextRetryAt = nil
	p.UpdatedAt = time.Now()
	return nil
}

// MarkIgnored excludes the row from sync by operator action
func (p *PaymentStaging) MarkIgnored(reason string) error {
	if !p.SyncStatus.CanTransitionTo(SyncStatusIgnore) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ignore payment row in %s status", p.SyncStatus))
	}
	p.SyncStatus = SyncStatusIgnore
	p.SyncError = reason
	p.NextRetryAt = nil
	p.UpdatedAt = time.Now()
	return nil
}

// IsSynced returns true if the row was accepted by Xero
func (p *PaymentStaging) IsSynced() bool {
	return p.SyncStatus == SyncStatusSynced
}

// IsPlanned returns true if the row awaits promotion
func (p *PaymentStaging) IsPlanned() bool {
	return p.SyncStatus == SyncStatusPlanned
}

// RetriesExhausted returns true if automatic retries have run out
func (p *PaymentStaging) RetriesExhausted() bool {
	return p.SyncStatus == SyncStatusFailed && p.RetryCount >= p.MaxRetries
}
