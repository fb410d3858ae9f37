package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
)

// StagingQueueFilter represents filter options for staging queue lists
type StagingQueueFilter struct {
	Status         string     `form:"status" binding:"omitempty,oneof=pending staged synced failed ignore planned"`
	MemberID       *uuid.UUID `form:"member_id"`
	RegistrationID *uuid.UUID `form:"registration_id"`
	FromDate       *time.Time `form:"from_date"`
	ToDate         *time.Time `form:"to_date"`
	Page           int        `form:"page" binding:"min=0"`
	PageSize       int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// IgnoreRowRequest represents an operator request to exclude a row from sync
type IgnoreRowRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// InvoiceStagingResponse represents an invoice staging row in API responses
type InvoiceStagingResponse struct {
	ID             uuid.UUID       `json:"id"`
	Kind           string          `json:"kind"`
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
	SyncStatus     string          `json:"sync_status"`
	SyncError      string          `json:"sync_error,omitempty"`
	RetryCount     int             `json:"retry_count"`
	MaxRetries     int             `json:"max_retries"`
	NextRetryAt    *time.Time      `json:"next_retry_at"`
	SyncedAt       *time.Time      `json:"synced_at"`
	XeroInvoiceID  string          `json:"xero_invoice_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToInvoiceStagingResponse converts a domain InvoiceStaging to its response
func ToInvoiceStagingResponse(row *accounting.InvoiceStaging) InvoiceStagingResponse {
	return InvoiceStagingResponse{
		ID:             row.ID,
		Kind:           row.Kind.String(),
		RegistrationID: row.RegistrationID,
		MemberID:       row.MemberID,
		ContactName:    row.ContactName,
		ContactEmail:   row.ContactEmail,
		Reference:      row.Reference,
		Description:    row.Description,
		AccountCode:    row.AccountCode,
		Amount:         row.Amount,
		Currency:       row.Currency,
		InvoiceDate:    row.InvoiceDate,
		DueDate:        row.DueDate,
		IdempotencyKey: row.IdempotencyKey,
		SyncStatus:     row.SyncStatus.String(),
		SyncError:      row.SyncError,
		RetryCount:     row.RetryCount,
		MaxRetries:     row.MaxRetries,
		NextRetryAt:    row.NextRetryAt,
		SyncedAt:       row.SyncedAt,
		XeroInvoiceID:  row.XeroInvoiceID,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// ToInvoiceStagingResponses converts a slice of invoice staging rows
func ToInvoiceStagingResponses(rows []accounting.InvoiceStaging) []InvoiceStagingResponse {
	responses := make([]InvoiceStagingResponse, len(rows))
	for i := range rows {
		responses[i] = ToInvoiceStagingResponse(&rows[i])
	}
	return responses
}

// PaymentStagingResponse represents a payment staging row in API responses
type PaymentStagingResponse struct {
	ID               uuid.UUID       `json:"id"`
	InvoiceStagingID uuid.UUID       `json:"invoice_staging_id"`
	PaymentID        uuid.UUID       `json:"payment_id"`
	RegistrationID   uuid.UUID       `json:"registration_id"`
	MemberID         uuid.UUID       `json:"member_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	BankAccountCode  string          `json:"bank_account_code"`
	PaidAt           time.Time       `json:"paid_at"`
	DueAt            *time.Time      `json:"due_at"`
	IdempotencyKey   string          `json:"idempotency_key"`
	SyncStatus       string          `json:"sync_status"`
	SyncError        string          `json:"sync_error,omitempty"`
	RetryCount       int             `json:"retry_count"`
	MaxRetries       int             `json:"max_retries"`
	NextRetryAt      *time.Time      `json:"next_retry_at"`
	SyncedAt         *time.Time      `json:"synced_at"`
	XeroPaymentID    string          `json:"xero_payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToPaymentStagingResponse converts a domain PaymentStaging to its response
func ToPaymentStagingResponse(row *accounting.PaymentStaging) PaymentStagingResponse {
	return PaymentStagingResponse{
		ID:               row.ID,
		InvoiceStagingID: row.InvoiceStagingID,
		PaymentID:        row.PaymentID,
		RegistrationID:   row.RegistrationID,
		MemberID:         row.MemberID,
		Amount:           row.Amount,
		Currency:         row.Currency,
		BankAccountCode:  row.BankAccountCode,
		PaidAt:           row.PaidAt,
		DueAt:            row.DueAt,
		IdempotencyKey:   row.IdempotencyKey,
		SyncStatus:       row.SyncStatus.String(),
		SyncError:        row.SyncError,
		RetryCount:       row.RetryCount,
		MaxRetries:       row.MaxRetries,
		NextRetryAt:      row.NextRetryAt,
		SyncedAt:         row.SyncedAt,
		XeroPaymentID:    row.XeroPaymentID,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

// ToPaymentStagingResponses converts a slice of payment staging rows
func ToPaymentStagingResponses(rows []accounting.PaymentStaging) []PaymentStagingResponse {
	responses := make([]PaymentStagingResponse, len(rows))
	for i := range rows {
		responses[i] = ToPaymentStagingResponse(&rows[i])
	}
	return responses
}

// StagingCountsResponse reports row counts per status for both queues
type StagingCountsResponse struct {
	Invoices map[string]int64 `json:"invoices"`
	Payments map[string]int64 `json:"payments"`
}

// SyncRunSectionResponse holds the per-table counts of one run
type SyncRunSectionResponse struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// SyncRunResponse represents a sync run in API responses
type SyncRunResponse struct {
	ID         uuid.UUID              `json:"id"`
	Trigger    string                 `json:"trigger"`
	Status     string                 `json:"status"`
	Invoices   SyncRunSectionResponse `json:"invoices"`
	Payments   SyncRunSectionResponse `json:"payments"`
	Promoted   int64                  `json:"promoted"`
	Error      string                 `json:"error,omitempty"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt *time.Time             `json:"finished_at"`
	DurationMS int64                  `json:"duration_ms"`
}

// ToSyncRunResponse converts a domain SyncRun to SyncRunResponse
func ToSyncRunResponse(run *accounting.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:      run.ID,
		Trigger: run.Trigger.String(),
		Status:  string(run.Status),
		Invoices: SyncRunSectionResponse{
			Total:   run.Counts.Invoices.Total,
			Synced:  run.Counts.Invoices.Synced,
			Failed:  run.Counts.Invoices.Failed,
			Skipped: run.Counts.Invoices.Skipped,
		},
		Payments: SyncRunSectionResponse{
			Total:   run.Counts.Payments.Total,
			Synced:  run.Counts.Payments.Synced,
			Failed:  run.Counts.Payments.Failed,
			Skipped: run.Counts.Payments.Skipped,
		},
		Promoted:   run.Counts.Promoted,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMS: run.Duration().Milliseconds(),
	}
}

// ToSyncRunResponses converts a slice of sync runs
func ToSyncRunResponses(runs []accounting.SyncRun) []SyncRunResponse {
	responses := make([]SyncRunResponse, len(runs))
	for i := range runs {
		responses[i] = ToSyncRunResponse(&runs[i])
	}
	return responses
}
