package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// SyncTrigger identifies what started a sync run
type SyncTrigger string

const (
	// SyncTriggerCron is a scheduled run
	SyncTriggerCron SyncTrigger = "cron"
	// SyncTriggerManual is an operator-initiated run
	SyncTriggerManual SyncTrigger = "manual"
)

// IsValid returns true if the trigger is valid
func (t SyncTrigger) IsValid() bool {
	return t == SyncTriggerCron || t == SyncTriggerManual
}

// String returns the string representation of SyncTrigger
func (t SyncTrigger) String() string {
	return string(t)
}

// SyncRunStatus represents the state of a sync run
type SyncRunStatus string

const (
	SyncRunStatusRunning   SyncRunStatus = "running"
	SyncRunStatusCompleted SyncRunStatus = "completed"
	SyncRunStatusFailed    SyncRunStatus = "failed"
)

// SyncRunCounts aggregates per-run row outcomes
type SyncRunCounts struct {
	Invoices SyncRunSectionCounts `json:"invoices"`
	Payments SyncRunSectionCounts `json:"payments"`
	Promoted int64                `json:"promoted"`
}

// SyncRunSectionCounts holds counts for one staging table within a run
type SyncRunSectionCounts struct {
	Total  int `json:"total"`
	Synced int `json:"synced"`
	Failed int `json:"failed"`
	// Skipped counts payment rows requeued because their invoice was not yet synced
	Skipped int `json:"skipped"`
}

// Total returns the overall number of rows touched by the run
func (c SyncRunCounts) Total() int {
	return c.Invoices.Total + c.Payments.Total
}

// SyncRun records one execution of the batch sync manager. Runs are
// persisted so operators can inspect history alongside the staging queue.
type SyncRun struct {
	ID         uuid.UUID     `json:"id"`
	Trigger    SyncTrigger   `json:"trigger"`
	Status     SyncRunStatus `json:"status"`
	Counts     SyncRunCounts `json:"counts"`
	Error      string        `json:"error"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
}

// NewSyncRun starts a new sync run record
func NewSyncRun(trigger SyncTrigger) (*SyncRun, error) {
	if !trigger.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRIGGER", "Invalid sync trigger")
	}
	return &SyncRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		Status:    SyncRunStatusRunning,
		StartedAt: time.Now(),
	}, nil
}

// Complete finishes the run with its aggregated counts
func (r *SyncRun) Complete(counts SyncRunCounts) {
	now := time.Now()
	r.Status = SyncRunStatusCompleted
	r.Counts = counts
	r.FinishedAt = &now
}

// Fail finishes the run with an error, keeping whatever counts accumulated
func (r *SyncRun) Fail(counts SyncRunCounts, errMsg string) {
	now := time.Now()
	r.Status = SyncRunStatusFailed
	r.Counts = counts
	r.Error = errMsg
	r.FinishedAt = &now
}

// Duration returns how long the run took, zero while still running
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SyncRunRepository defines persistence for sync run history
type SyncRunRepository interface {
	// Save creates or updates a sync run record
	Save(ctx context.Context, run *SyncRun) error

	// FindByID finds a sync run by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncRun, error)

	// FindRecent returns the most recent runs, newest first
	FindRecent(ctx context.Context, limit int) ([]SyncRun, error)
}
