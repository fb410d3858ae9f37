package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes regular invoices from refund credit notes
type InvoiceKind string

const (
	// InvoiceKindInvoice is a standard accounts-receivable invoice
	InvoiceKindInvoice InvoiceKind = "INVOICE"
	// InvoiceKindCreditNote is a credit note raised for a refund
	InvoiceKindCreditNote InvoiceKind = "CREDIT_NOTE"
)

// IsValid checks if the kind is valid
func (k InvoiceKind) IsValid() bool {
	return k == InvoiceKindInvoice || k == InvoiceKindCreditNote
}

// String returns the string representation of InvoiceKind
func (k InvoiceKind) String() string {
	return string(k)
}

// Staging retry defaults
const (
	StagingMaxRetries  = 5
	StagingBaseBackoff = time.Minute
	StagingMaxBackoff  = 6 * time.Hour
)

// StagingStaleClaimAfter is how long a row may sit in staged before it is
// treated as abandoned by a dead run and reclaimed for the next one. Longer
// than any healthy run, so in-flight rows are never stolen.
const StagingStaleClaimAfter = 30 * time.Minute

// InvoiceStaging is a write-ahead staging row for a Xero invoice or credit
// note. Rows are inserted when a registration is paid (or a refund issued)
// and drained by batch sync runs. The row is the unit of work: its status,
// retry counter and idempotency key live on the row itself.
type InvoiceStaging struct {
	shared.BaseAggregateRoot

	Kind           InvoiceKind     `json:"kind"`
	RegistrationID uuid.UUID       `json:"registration_id"`
	MemberID       uuid.UUID       `json:"member_id"`
	ContactName    string          `json:"contact_name"`
	ContactEmail   string          `json:"contact_email"`
	Reference      string          `json:"reference"`
	Description    string          `json:"description"`
	AccountCode    string          `json:"account_code"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	DueDate        time.Time       `json:"due_date"`

	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       StagingMetadata `json:"staging_metadata"`

	SyncStatus  SyncStatus `json:"sync_status"`
	SyncError   string     `json:"sync_error"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	NextRetryAt *time.Time `json:"next_retry_at"`
	SyncedAt    *time.Time `json:"synced_at"`

	// XeroInvoiceID is the remote document id once synced
	XeroInvoiceID string `json:"xero_invoice_id"`
}

// NewInvoiceStaging creates a pending invoice staging row
func NewInvoiceStaging(
	kind InvoiceKind,
	registrationID uuid.UUID,
	memberID uuid.UUID,
	contactName string,
	contactEmail string,
	reference string,
	description string,
	accountCode string,
	amount decimal.Decimal,
	currency string,
	invoiceDate time.Time,
	dueDate time.Time,
	idempotencyKey string,
	metadata StagingMetadata,
) (*InvoiceStaging, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_KIND", "Invalid invoice kind")
	}
	if registrationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REGISTRATION", "Registration ID cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if contactName == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact name cannot be empty")
	}
	if accountCode == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	if idempotencyKey == "" {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot be empty")
	}

	is := &InvoiceStaging{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		RegistrationID:    registrationID,
		MemberID:          memberID,
		ContactName:       contactName,
		ContactEmail:      contactEmail,
		Reference:         reference,
		Description:       description,
		AccountCode:       accountCode,
		Amount:            amount,
		Currency:          currency,
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
		IdempotencyKey:    idempotencyKey,
		Metadata:          metadata,
		SyncStatus:        SyncStatusPending,
		MaxRetries:        StagingMaxRetries,
	}

	is.AddDomainEvent(NewInvoiceStagingCreatedEvent(is))

	return is, nil
}

// MarkStaged claims the row for an in-flight sync run
func (i *InvoiceStaging) MarkStaged() error {
	if !i.SyncStatus.CanTransitionTo(SyncStatusStaged) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot stage invoice row in %s status", i.SyncStatus))
	}
	i.SyncStatus = SyncStatusStaged
	i.UpdatedAt = time.Now()
	return nil
}

// MarkSynced records acceptance by Xero and the remote invoice id
func (i *InvoiceStaging) MarkSynced(xeroInvoiceID string) error {
	if !i.SyncStatus.CanTransitionTo(SyncStatusSynced) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice row synced in %s status", i.SyncStatus))
	}
	if xeroInvoiceID == "" {
		return shared.NewDomainError("INVALID_XERO_ID", "Xero invoice ID cannot be empty")
	}

	now := time.Now()
	i.SyncStatus = SyncStatusSynced
	i.XeroInvoiceID = xeroInvoiceID
	i.SyncError = ""
	i.NextRetryAt = nil
	i.SyncedAt = &now
	i.UpdatedAt = now
	return nil
}

// MarkFailed records a sync error and schedules the next retry
func (i *InvoiceStaging) MarkFailed(syncErr string) error {
	if !i.SyncStatus.CanTransitionTo(SyncStatusFailed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail invoice row in %s status", i.SyncStatus))
	}

	now := time.Now()
	i.SyncStatus = SyncStatusFailed
	i.SyncError = syncErr
	i.RetryCount++
	i.UpdatedAt = now

	if i.RetryCount >= i.MaxRetries {
		// Retries exhausted, row stays failed until an operator retries or ignores it
		i.NextRetryAt = nil
		i.AddDomainEvent(NewStagingSyncExhaustedEvent(i.ID, StagingRecordTypeInvoice, i.IdempotencyKey, syncErr, i.RetryCount))
	} else {
		nextRetry := now.Add(stagingBackoff(i.RetryCount))
		i.NextRetryAt = &nextRetry
	}
	return nil
}

// ResetForRetry requeues a failed row regardless of its retry budget.
// Used by the admin retry endpoint after an operator fixed the cause.
func (i *InvoiceStaging) ResetForRetry() error {
	if i.SyncStatus != SyncStatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Can only retry failed rows")
	}
	i.SyncStatus = SyncStatusPending
	i.RetryCount = 0
	i.SyncError = ""
	i.NextRetryAt = nil
	i.UpdatedAt = time.Now()
	return nil
}

// MarkIgnored excludes the row from sync by operator action
func (i *InvoiceStaging) MarkIgnored(reason string) error {
	if !i.SyncStatus.CanTransitionTo(SyncStatusIgnore) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot ignore invoice row in %s status", i.SyncStatus))
	}
	i.SyncStatus = SyncStatusIgnore
	i.SyncError = reason
	i.NextRetryAt = nil
	i.UpdatedAt = time.Now()
	return nil
}

// IsSynced returns true if the row was accepted by Xero
func (i *InvoiceStaging) IsSynced() bool {
	return i.SyncStatus == SyncStatusSynced
}

// RetriesExhausted returns true if automatic retries have run out
func (i *InvoiceStaging) RetriesExhausted() bool {
	return i.SyncStatus == SyncStatusFailed && i.RetryCount >= i.MaxRetries
}

// stagingBackoff computes the capped exponential retry delay: 1m, 2m, 4m, ...
func stagingBackoff(retryCount int) time.Duration {
	backoff := StagingBaseBackoff * time.Duration(1<<uint(retryCount-1))
	if backoff > StagingMaxBackoff {
		backoff = StagingMaxBackoff
	}
	return backoff
}
