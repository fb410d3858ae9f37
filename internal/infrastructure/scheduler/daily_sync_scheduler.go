// Package scheduler runs the nightly billing and accounting jobs.
package scheduler

import (
	"context"
	"sync"
	"time"

	appaccounting "github.com/rinkpass/backend/internal/application/accounting"
	appbilling "github.com/rinkpass/backend/internal/application/billing"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Config holds the daily scheduler configuration
type Config struct {
	Enabled bool

	// DailyAt is the local wall-clock time the nightly job fires, HH:MM
	DailyAt string

	// JobTimeout bounds one nightly job end to end
	JobTimeout time.Duration

	// CheckInterval is how often the trigger loop inspects the clock
	CheckInterval time.Duration
}

// DailySyncScheduler fires the nightly job: charge due installments first,
// then run the Xero batch sync so the resulting rows are picked up in the
// same night where possible.
type DailySyncScheduler struct {
	config      Config
	syncService *appaccounting.SyncService
	planService *appbilling.PaymentPlanService
	metrics     *telemetry.SyncMetrics
	logger      *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewDailySyncScheduler creates a new daily sync scheduler. metrics may be
// nil when telemetry is disabled.
func NewDailySyncScheduler(
	config Config,
	syncService *appaccounting.SyncService,
	planService *appbilling.PaymentPlanService,
	metrics *telemetry.SyncMetrics,
	logger *zap.Logger,
) *DailySyncScheduler {
	if config.DailyAt == "" {
		config.DailyAt = "02:00"
	}
	if config.JobTimeout == 0 {
		config.JobTimeout = 30 * time.Minute
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = time.Minute
	}
	return &DailySyncScheduler{
		config:      config,
		syncService: syncService,
		planService: planService,
		metrics:     metrics,
		logger:      logger,
	}
}

// Start starts the trigger loop
func (s *DailySyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Daily sync scheduler started",
		zap.String("daily_at", s.config.DailyAt),
		zap.Duration("job_timeout", s.config.JobTimeout))
	return nil
}

// Stop stops the trigger loop and waits for an in-flight job
func (s *DailySyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Daily sync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Daily sync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *DailySyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndTrigger(ctx)
		}
	}
}

func (s *DailySyncScheduler) checkAndTrigger(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == currentDate
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	if now.Format("15:04") != s.config.DailyAt {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	if _, err := s.RunNow(ctx, accounting.SyncTriggerCron); err != nil {
		s.logger.Error("Nightly job failed", zap.Error(err))
	}
}

// RunNow executes the nightly job immediately and returns the sync run
// result. The cron endpoint reuses it for externally triggered runs.
func (s *DailySyncScheduler) RunNow(ctx context.Context, trigger accounting.SyncTrigger) (*appaccounting.SyncRunResponse, error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	s.logger.Info("Starting nightly job", zap.String("trigger", trigger.String()))
	started := time.Now()

	charged, err := s.planService.ChargeDueInstallments(jobCtx, time.Now())
	if err != nil {
		// The sync still runs so already settled rows reach Xero
		s.logger.Error("Failed to charge due installments", zap.Error(err))
	} else {
		s.logger.Info("Charged due installments", zap.Int("charged", charged))
		if s.metrics != nil {
			s.metrics.RecordInstallmentsCharged(jobCtx, trigger.String(), charged)
		}
	}

	result, err := s.syncService.Run(jobCtx, trigger)
	if err != nil {
		s.logger.Error("Xero sync run failed", zap.Error(err))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSyncRun(jobCtx, trigger.String(), time.Since(started),
			result.Invoices.Synced, result.Invoices.Failed,
			result.Payments.Synced, result.Payments.Failed,
			result.Promoted)
	}

	s.logger.Info("Nightly job finished",
		zap.String("run_id", result.ID.String()),
		zap.Int("invoices_synced", result.Invoices.Synced),
		zap.Int("invoices_failed", result.Invoices.Failed),
		zap.Int("payments_synced", result.Payments.Synced),
		zap.Int("payments_failed", result.Payments.Failed),
		zap.Int64("promoted", result.Promoted))
	return result, nil
}
