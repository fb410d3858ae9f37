package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/rinkpass/backend/internal/domain/accounting"
	"go.uber.org/zap"
)

// SyncService is the batch sync manager. Each run promotes due planned
// payment rows, drains invoice staging rows to Xero, then drains payment
// rows whose invoices are already synced. Rows are claimed with FOR UPDATE
// SKIP LOCKED, so overlapping runs divide the queue instead of colliding.
type SyncService struct {
	invoiceRepo accounting.InvoiceStagingRepository
	paymentRepo accounting.PaymentStagingRepository
	runRepo     accounting.SyncRunRepository
	gateway     accounting.XeroGateway
	batchSize   int
	logger      *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(
	invoiceRepo accounting.InvoiceStagingRepository,
	paymentRepo accounting.PaymentStagingRepository,
	runRepo accounting.SyncRunRepository,
	gateway accounting.XeroGateway,
	batchSize int,
	logger *zap.Logger,
) *SyncService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		runRepo:     runRepo,
		gateway:     gateway,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// Run executes one sync run and records it. The run record is saved as
// running before any work so an operator can see a run in flight.
func (s *SyncService) Run(ctx context.Context, trigger accounting.SyncTrigger) (*SyncRunResponse, error) {
	run, err := accounting.NewSyncRun(trigger)
	if err != nil {
		return nil, err
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save sync run: %w", err)
	}

	s.logger.Info("sync run started",
		zap.String("run_id", run.ID.String()),
		zap.String("trigger", trigger.String()))

	counts, runErr := s.execute(ctx)
	if runErr != nil {
		run.Fail(counts, runErr.Error())
		s.logger.Error("sync run failed",
			zap.String("run_id", run.ID.String()),
			zap.Error(runErr))
	} else {
		run.Complete(counts)
		s.logger.Info("sync run completed",
			zap.String("run_id", run.ID.String()),
			zap.Int("invoices_synced", counts.Invoices.Synced),
			zap.Int("invoices_failed", counts.Invoices.Failed),
			zap.Int("payments_synced", counts.Payments.Synced),
			zap.Int("payments_failed", counts.Payments.Failed),
			zap.Int("payments_skipped", counts.Payments.Skipped),
			zap.Int64("promoted", counts.Promoted))
	}

	if err := s.runRepo.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save sync run: %w", err)
	}

	response := ToSyncRunResponse(run)
	return &response, runErr
}

func (s *SyncService) execute(ctx context.Context) (accounting.SyncRunCounts, error) {
	var counts accounting.SyncRunCounts
	now := time.Now()

	if err := s.reclaimStale(ctx, now); err != nil {
		return counts, err
	}

	promoted, err := s.paymentRepo.PromoteDue(ctx, now)
	if err != nil {
		return counts, fmt.Errorf("failed to promote due rows: %w", err)
	}
	counts.Promoted = promoted

	if err := s.syncInvoices(ctx, now, &counts); err != nil {
		return counts, err
	}
	if err := s.syncPayments(ctx, now, &counts); err != nil {
		return counts, err
	}
	return counts, nil
}

// reclaimStale returns rows stranded in staged by a run that died before
// recording an outcome to the pending queue, so this run can pick them up
func (s *SyncService) reclaimStale(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-accounting.StagingStaleClaimAfter)

	invoices, err := s.invoiceRepo.ReclaimStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to reclaim stale invoice rows: %w", err)
	}
	payments, err := s.paymentRepo.ReclaimStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to reclaim stale payment rows: %w", err)
	}

	if invoices > 0 || payments > 0 {
		s.logger.Warn("reclaimed stale staged rows",
			zap.Int64("invoices", invoices),
			zap.Int64("payments", payments))
	}
	return nil
}

// syncInvoices claims and pushes invoice staging rows batch by batch until
// the queue is drained
func (s *SyncService) syncInvoices(ctx context.Context, now time.Time, counts *accounting.SyncRunCounts) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rows, err := s.invoiceRepo.ClaimPending(ctx, s.batchSize, now)
		if err != nil {
			return fmt.Errorf("failed to claim invoice rows: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			counts.Invoices.Total++

			xeroID, err := s.gateway.CreateInvoice(ctx, row)
			if err != nil {
				counts.Invoices.Failed++
				s.logger.Warn("invoice sync failed",
					zap.String("row_id", row.ID.String()),
					zap.String("idempotency_key", row.IdempotencyKey),
					zap.Int("retry_count", row.RetryCount+1),
					zap.Error(err))
				if err := row.MarkFailed(err.Error()); err != nil {
					return err
				}
			} else {
				counts.Invoices.Synced++
				if err := row.MarkSynced(xeroID); err != nil {
					return err
				}
			}

			if err := s.invoiceRepo.Save(ctx, row); err != nil {
				return fmt.Errorf("failed to save invoice row: %w", err)
			}
		}
	}
}

// syncPayments claims and pushes payment staging rows. A payment whose
// invoice has not synced yet is skipped and requeued only after the queue
// drains, so the run cannot reclaim it and spin. It will be picked up
// again next run once the invoice goes through.
func (s *SyncService) syncPayments(ctx context.Context, now time.Time, counts *accounting.SyncRunCounts) error {
	var skipped []*accounting.PaymentStaging

	defer func() {
		for _, row := range skipped {
			if err := row.Requeue(); err != nil {
				s.logger.Warn("failed to requeue skipped payment row",
					zap.String("row_id", row.ID.String()),
					zap.Error(err))
				continue
			}
			if err := s.paymentRepo.Save(context.WithoutCancel(ctx), row); err != nil {
				s.logger.Warn("failed to save requeued payment row",
					zap.String("row_id", row.ID.String()),
					zap.Error(err))
			}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rows, err := s.paymentRepo.ClaimPending(ctx, s.batchSize, now)
		if err != nil {
			return fmt.Errorf("failed to claim payment rows: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		for _, row := range rows {
			counts.Payments.Total++

			invoice, err := s.invoiceRepo.FindByID(ctx, row.InvoiceStagingID)
			if err != nil {
				return fmt.Errorf("failed to load invoice for payment row: %w", err)
			}

			if !invoice.IsSynced() {
				counts.Payments.Skipped++
				skipped = append(skipped, row)
				continue
			}

			xeroID, err := s.gateway.CreatePayment(ctx, row, invoice.XeroInvoiceID)
			if err != nil {
				counts.Payments.Failed++
				s.logger.Warn("payment sync failed",
					zap.String("row_id", row.ID.String()),
					zap.String("idempotency_key", row.IdempotencyKey),
					zap.Int("retry_count", row.RetryCount+1),
					zap.Error(err))
				if err := row.MarkFailed(err.Error()); err != nil {
					return err
				}
			} else {
				counts.Payments.Synced++
				if err := row.MarkSynced(xeroID); err != nil {
					return err
				}
			}

			if err := s.paymentRepo.Save(ctx, row); err != nil {
				return fmt.Errorf("failed to save payment row: %w", err)
			}
		}
	}
}

// Ping verifies connectivity to the accounting provider
func (s *SyncService) Ping(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}
