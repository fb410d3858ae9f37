package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// StagingFilter defines filtering options for staging queue queries
type StagingFilter struct {
	shared.Filter
	Status         *SyncStatus
	MemberID       *uuid.UUID
	RegistrationID *uuid.UUID
	FromDate       *time.Time
	ToDate         *time.Time
}

// InvoiceStagingRepository defines persistence for invoice staging rows
type InvoiceStagingRepository interface {
	// FindByID finds an invoice staging row by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InvoiceStaging, error)

	// FindByIdempotencyKey finds a row by its deterministic idempotency key
	FindByIdempotencyKey(ctx context.Context, key string) (*InvoiceStaging, error)

	// FindByRegistration finds rows staged for a registration
	FindByRegistration(ctx context.Context, registrationID uuid.UUID) ([]InvoiceStaging, error)

	// FindAll finds rows matching the filter with pagination
	FindAll(ctx context.Context, filter StagingFilter) ([]InvoiceStaging, int64, error)

	// ClaimPending atomically claims up to limit rows that are pending, or
	// failed with next_retry_at due, using FOR UPDATE SKIP LOCKED inside a
	// transaction. Claimed rows are flipped to staged before being returned,
	// so concurrent runs never see the same row.
	ClaimPending(ctx context.Context, limit int, now time.Time) ([]*InvoiceStaging, error)

	// ReclaimStale moves staged rows last touched before cutoff back to
	// pending and returns how many rows were reclaimed. Staged rows older
	// than any plausible run are leftovers from a run that died mid-flight.
	ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error)

	// Save creates or updates a row
	Save(ctx context.Context, row *InvoiceStaging) error

	// CountByStatus returns row counts per sync status
	CountByStatus(ctx context.Context) (map[SyncStatus]int64, error)

	// ExistsByIdempotencyKey checks whether a row with the key already exists
	ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error)
}

// PaymentStagingRepository defines persistence for payment staging rows
type PaymentStagingRepository interface {
	// FindByID finds a payment staging row by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentStaging, error)

	// FindByIdempotencyKey finds a row by its deterministic idempotency key
	FindByIdempotencyKey(ctx context.Context, key string) (*PaymentStaging, error)

	// FindByInvoiceStaging finds payment rows linked to an invoice staging row
	FindByInvoiceStaging(ctx context.Context, invoiceStagingID uuid.UUID) ([]PaymentStaging, error)

	// FindAll finds rows matching the filter with pagination
	FindAll(ctx context.Context, filter StagingFilter) ([]PaymentStaging, int64, error)

	// ClaimPending atomically claims up to limit rows that are pending, or
	// failed with next_retry_at due, using FOR UPDATE SKIP LOCKED inside a
	// transaction. Claimed rows are flipped to staged before being returned.
	ClaimPending(ctx context.Context, limit int, now time.Time) ([]*PaymentStaging, error)

	// PromoteDue moves planned rows whose due date has passed to pending
	// and returns how many rows were promoted
	PromoteDue(ctx context.Context, now time.Time) (int64, error)

	// ReclaimStale moves staged rows last touched before cutoff back to
	// pending and returns how many rows were reclaimed
	ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error)

	// Save creates or updates a row
	Save(ctx context.Context, row *PaymentStaging) error

	// CountByStatus returns row counts per sync status
	CountByStatus(ctx context.Context) (map[SyncStatus]int64, error)

	// ExistsByIdempotencyKey checks whether a row with the key already exists
	ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error)
}
