package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
)

// InvoiceStagingModel is the GORM model for Xero invoice staging rows.
// Both invoices and refund credit notes live in this table, distinguished
// by kind.
type InvoiceStagingModel struct {
	AggregateModel
	Kind           string          `gorm:"type:varchar(20);not null;index"`
	RegistrationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContactName    string          `gorm:"type:varchar(255);not null"`
	ContactEmail   string          `gorm:"type:varchar(255)"`
	Reference      string          `gorm:"type:varchar(100);index"`
	Description    string          `gorm:"type:text"`
	AccountCode    string          `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	InvoiceDate    time.Time       `gorm:"not null"`
	DueDate        time.Time       `gorm:"not null"`
	IdempotencyKey string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Metadata       string          `gorm:"column:staging_metadata;type:jsonb"`
	SyncStatus     string          `gorm:"type:varchar(20);not null;default:pending;index:idx_xero_invoice_staging_status_retry,priority:1"`
	SyncError      string          `gorm:"type:text"`
	RetryCount     int             `gorm:"not null;default:0"`
	MaxRetries     int             `gorm:"not null;default:5"`
	NextRetryAt    *time.Time      `gorm:"index:idx_xero_invoice_staging_status_retry,priority:2"`
	SyncedAt       *time.Time
	XeroInvoiceID  string `gorm:"type:varchar(100)"`
}

// TableName specifies the table name for GORM
func (InvoiceStagingModel) TableName() string {
	return "xero_invoice_staging"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *InvoiceStagingModel) ToDomain() (*accounting.InvoiceStaging, error) {
	var metadata accounting.StagingMetadata
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, err
		}
	}

	row := &accounting.InvoiceStaging{
		Kind:           accounting.InvoiceKind(m.Kind),
		RegistrationID: m.RegistrationID,
		MemberID:       m.MemberID,
		ContactName:    m.ContactName,
		ContactEmail:   m.ContactEmail,
		Reference:      m.Reference,
		Description:    m.Description,
		AccountCode:    m.AccountCode,
		Amount:         m.Amount,
		Currency:       m.Currency,
		InvoiceDate:    m.InvoiceDate,
		DueDate:        m.DueDate,
		IdempotencyKey: m.IdempotencyKey,
		Metadata:       metadata,
		SyncStatus:     accounting.SyncStatus(m.SyncStatus),
		SyncError:      m.SyncError,
		RetryCount:     m.RetryCount,
		MaxRetries:     m.MaxRetries,
		NextRetryAt:    m.NextRetryAt,
		SyncedAt:       m.SyncedAt,
		XeroInvoiceID:  m.XeroInvoiceID,
	}
	m.PopulateAggregateRoot(&row.BaseAggregateRoot)
	return row, nil
}

// FromDomain populates the persistence model from a domain aggregate
func (m *InvoiceStagingModel) FromDomain(row *accounting.InvoiceStaging) error {
	metadata, err := json.Marshal(row.Metadata)
	if err != nil {
		return err
	}

	m.FromDomainAggregateRoot(row.BaseAggregateRoot)
	m.Kind = row.Kind.String()
	m.RegistrationID = row.RegistrationID
	m.MemberID = row.MemberID
	m.ContactName = row.ContactName
	m.ContactEmail = row.ContactEmail
	m.Reference = row.Reference
	m.Description = row.Description
	m.AccountCode = row.AccountCode
	m.Amount = row.Amount
	m.Currency = row.Currency
	m.InvoiceDate = row.InvoiceDate
	m.DueDate = row.DueDate
	m.IdempotencyKey = row.IdempotencyKey
	m.Metadata = string(metadata)
	m.SyncStatus = row.SyncStatus.String()
	m.SyncError = row.SyncError
	m.RetryCount = row.RetryCount
	m.MaxRetries = row.MaxRetries
	m.NextRetryAt = row.NextRetryAt
	m.SyncedAt = row.SyncedAt
	m.XeroInvoiceID = row.XeroInvoiceID
	return nil
}

// PaymentStagingModel is the GORM model for Xero payment staging rows
type PaymentStagingModel struct {
	AggregateModel
	InvoiceStagingID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	RegistrationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MemberID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency         string          `gorm:"type:varchar(3);not null"`
	BankAccountCode  string          `gorm:"type:varchar(20);not null"`
	PaidAt           time.Time       `gorm:"not null"`
	DueAt            *time.Time      `gorm:"index"`
	IdempotencyKey   string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Metadata         string          `gorm:"column:staging_metadata;type:jsonb"`
	SyncStatus       string          `gorm:"type:varchar(20);not null;default:pending;index:idx_xero_payment_staging_status_retry,priority:1"`
	SyncError        string          `gorm:"type:text"`
	RetryCount       int             `gorm:"not null;default:0"`
	MaxRetries       int             `gorm:"not null;default:5"`
	NextRetryAt      *time.Time      `gorm:"index:idx_xero_payment_staging_status_retry,priority:2"`
	SyncedAt         *time.Time
	XeroPaymentID    string `gorm:"type:varchar(100)"`
}

// TableName specifies the table name for GORM
func (PaymentStagingModel) TableName() string {
	return "xero_payment_staging"
}

// ToDomain converts the persistence model to a domain aggregate
func (m *PaymentStagingModel) ToDomain() (*accounting.PaymentStaging, error) {
	var metadata accounting.StagingMetadata
	if m.Metadata != "" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, err
		}
	}

	row := &accounting.PaymentStaging{
		InvoiceStagingID: m.InvoiceStagingID,
		PaymentID:        m.PaymentID,
		RegistrationID:   m.RegistrationID,
		MemberID:         m.MemberID,
		Amount:           m.Amount,
		Currency:         m.Currency,
		BankAccountCode:  m.BankAccountCode,
		PaidAt:           m.PaidAt,
		DueAt:            m.DueAt,
		IdempotencyKey:   m.IdempotencyKey,
		Metadata:         metadata,
		SyncStatus:       accounting.SyncStatus(m.SyncStatus),
		SyncError:        m.SyncError,
		RetryCount:       m.RetryCount,
		MaxRetries:       m.MaxRetries,
		NextRetryAt:      m.NextRetryAt,
		SyncedAt:         m.SyncedAt,
		XeroPaymentID:    m.XeroPaymentID,
	}
	m.PopulateAggregateRoot(&row.BaseAggregateRoot)
	return row, nil
}

// FromDomain populates the persistence model from a domain aggregate
func (m *PaymentStagingModel) FromDomain(row *accounting.PaymentStaging) error {
	metadata, err := json.Marshal(row.Metadata)
	if err != nil {
		return err
	}

	m.FromDomainAggregateRoot(row.BaseAggregateRoot)
	m.InvoiceStagingID = row.InvoiceStagingID
	m.PaymentID = row.PaymentID
	m.RegistrationID = row.RegistrationID
	m.MemberID = row.MemberID
	m.Amount = row.Amount
	m.Currency = row.Currency
	m.BankAccountCode = row.BankAccountCode
	m.PaidAt = row.PaidAt
	m.DueAt = row.DueAt
	m.IdempotencyKey = row.IdempotencyKey
	m.Metadata = string(metadata)
	m.SyncStatus = row.SyncStatus.String()
	m.SyncError = row.SyncError
	m.RetryCount = row.RetryCount
	m.MaxRetries = row.MaxRetries
	m.NextRetryAt = row.NextRetryAt
	m.SyncedAt = row.SyncedAt
	m.XeroPaymentID = row.XeroPaymentID
	return nil
}

// SyncRunModel is the GORM model for batch sync run history
type SyncRunModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	Trigger    string     `gorm:"type:varchar(20);not null"`
	Status     string     `gorm:"type:varchar(20);not null;index"`
	Counts     string     `gorm:"type:jsonb"`
	Error      string     `gorm:"type:text"`
	StartedAt  time.Time  `gorm:"not null;index"`
	FinishedAt *time.Time
}

// TableName specifies the table name for GORM
func (SyncRunModel) TableName() string {
	return "xero_sync_runs"
}

// ToDomain converts the persistence model to a domain entity
func (m *SyncRunModel) ToDomain() (*accounting.SyncRun, error) {
	var counts accounting.SyncRunCounts
	if m.Counts != "" {
		if err := json.Unmarshal([]byte(m.Counts), &counts); err != nil {
			return nil, err
		}
	}

	return &accounting.SyncRun{
		ID:         m.ID,
		Trigger:    accounting.SyncTrigger(m.Trigger),
		Status:     accounting.SyncRunStatus(m.Status),
		Counts:     counts,
		Error:      m.Error,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain entity
func (m *SyncRunModel) FromDomain(run *accounting.SyncRun) error {
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return err
	}

	m.ID = run.ID
	m.Trigger = run.Trigger.String()
	m.Status = string(run.Status)
	m.Counts = string(counts)
	m.Error = run.Error
	m.StartedAt = run.StartedAt
	m.FinishedAt = run.FinishedAt
	return nil
}
