package accounting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// QueueService exposes the staging queues to operators: listing rows,
// status counts, sync run history, and the manual retry and ignore actions
// for rows that ran out of automatic retries.
type QueueService struct {
	invoiceRepo accounting.InvoiceStagingRepository
	paymentRepo accounting.PaymentStagingRepository
	runRepo     accounting.SyncRunRepository
}

// NewQueueService creates a new queue service
func NewQueueService(
	invoiceRepo accounting.InvoiceStagingRepository,
	paymentRepo accounting.PaymentStagingRepository,
	runRepo accounting.SyncRunRepository,
) *QueueService {
	return &QueueService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		runRepo:     runRepo,
	}
}

// ListInvoiceRows retrieves invoice staging rows with filtering and pagination
func (s *QueueService) ListInvoiceRows(ctx context.Context, filter StagingQueueFilter) (*shared.Paginated[InvoiceStagingResponse], error) {
	domainFilter := toStagingFilter(&filter)

	rows, total, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice staging rows: %w", err)
	}

	result := shared.NewPaginated(ToInvoiceStagingResponses(rows), total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListPaymentRows retrieves payment staging rows with filtering and pagination
func (s *QueueService) ListPaymentRows(ctx context.Context, filter StagingQueueFilter) (*shared.Paginated[PaymentStagingResponse], error) {
	domainFilter := toStagingFilter(&filter)

	rows, total, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment staging rows: %w", err)
	}

	result := shared.NewPaginated(ToPaymentStagingResponses(rows), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Counts returns per-status row counts for both staging queues
func (s *QueueService) Counts(ctx context.Context) (*StagingCountsResponse, error) {
	invoiceCounts, err := s.invoiceRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoice rows: %w", err)
	}
	paymentCounts, err := s.paymentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count payment rows: %w", err)
	}

	response := &StagingCountsResponse{
		Invoices: make(map[string]int64, len(invoiceCounts)),
		Payments: make(map[string]int64, len(paymentCounts)),
	}
	for status, count := range invoiceCounts {
		response.Invoices[status.String()] = count
	}
	for status, count := range paymentCounts {
		response.Payments[status.String()] = count
	}
	return response, nil
}

// RetryInvoiceRow requeues a failed invoice row for the next sync run
func (s *QueueService) RetryInvoiceRow(ctx context.Context, id uuid.UUID) (*InvoiceStagingResponse, error) {
	row, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := row.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save invoice staging row: %w", err)
	}
	response := ToInvoiceStagingResponse(row)
	return &response, nil
}

// RetryPaymentRow requeues a failed payment row for the next sync run
func (s *QueueService) RetryPaymentRow(ctx context.Context, id uuid.UUID) (*PaymentStagingResponse, error) {
	row, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := row.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save payment staging row: %w", err)
	}
	response := ToPaymentStagingResponse(row)
	return &response, nil
}

// IgnoreInvoiceRow excludes an invoice row from sync by operator action
func (s *QueueService) IgnoreInvoiceRow(ctx context.Context, id uuid.UUID, reason string) (*InvoiceStagingResponse, error) {
	row, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := row.MarkIgnored(reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save invoice staging row: %w", err)
	}
	response := ToInvoiceStagingResponse(row)
	return &response, nil
}

// IgnorePaymentRow excludes a payment row from sync by operator action
func (s *QueueService) IgnorePaymentRow(ctx context.Context, id uuid.UUID, reason string) (*PaymentStagingResponse, error) {
	row, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := row.MarkIgnored(reason); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save payment staging row: %w", err)
	}
	response := ToPaymentStagingResponse(row)
	return &response, nil
}

// RecentRuns returns the most recent sync runs, newest first
func (s *QueueService) RecentRuns(ctx context.Context, limit int) ([]SyncRunResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.runRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return ToSyncRunResponses(runs), nil
}

func toStagingFilter(filter *StagingQueueFilter) accounting.StagingFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := accounting.StagingFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		MemberID:       filter.MemberID,
		RegistrationID: filter.RegistrationID,
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
	}
	if filter.Status != "" {
		status := accounting.SyncStatus(filter.Status)
		domainFilter.Status = &status
	}
	return domainFilter
}
