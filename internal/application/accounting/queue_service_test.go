package accounting

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueServiceCounts(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)
	queue := NewQueueService(f.invoiceRepo, f.paymentRepo, f.runRepo)

	f.addInvoiceRow(t, uuid.New())
	f.addInvoiceRow(t, uuid.New())
	failed := f.addInvoiceRow(t, uuid.New())
	f.gateway.failInvoice[failed.IdempotencyKey] = errors.New("xero: 500")

	_, err := f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)

	counts, err := queue.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Invoices["synced"])
	assert.Equal(t, int64(1), counts.Invoices["failed"])
}

func TestQueueServiceListByStatus(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)
	queue := NewQueueService(f.invoiceRepo, f.paymentRepo, f.runRepo)

	f.addInvoiceRow(t, uuid.New())
	f.addInvoiceRow(t, uuid.New())

	page, err := queue.ListInvoiceRows(ctx, StagingQueueFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)

	page, err = queue.ListInvoiceRows(ctx, StagingQueueFilter{Status: "synced"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestQueueServiceRetryFailedRow(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)
	queue := NewQueueService(f.invoiceRepo, f.paymentRepo, f.runRepo)

	row := f.addInvoiceRow(t, uuid.New())
	f.gateway.failInvoice[row.IdempotencyKey] = errors.New("xero: 500")
	row.RetryCount = accounting.StagingMaxRetries - 1

	_, err := f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)
	require.True(t, row.RetriesExhausted())

	resp, err := queue.RetryInvoiceRow(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.SyncStatus)
	assert.Zero(t, row.RetryCount)

	// The requeued row is claimable again
	delete(f.gateway.failInvoice, row.IdempotencyKey)
	result, err := f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Invoices.Synced)
}

func TestQueueServiceRetryRejectsNonFailedRow(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)
	queue := NewQueueService(f.invoiceRepo, f.paymentRepo, f.runRepo)

	row := f.addInvoiceRow(t, uuid.New())
	_, err := queue.RetryInvoiceRow(ctx, row.ID)
	assert.Error(t, err)
}

func TestQueueServiceIgnoreRow(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)
	queue := NewQueueService(f.invoiceRepo, f.paymentRepo, f.runRepo)

	row := f.addInvoiceRow(t, uuid.New())
	resp, err := queue.IgnoreInvoiceRow(ctx, row.ID, "duplicate manual entry")
	require.NoError(t, err)
	assert.Equal(t, "ignore", resp.SyncStatus)

	// Ignored rows are never claimed
	result, err := f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)
	assert.Zero(t, result.Invoices.Total)
}

func TestQueueServiceRecentRuns(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)
	queue := NewQueueService(f.invoiceRepo, f.paymentRepo, f.runRepo)

	_, err := f.svc.Run(ctx, accounting.SyncTriggerCron)
	require.NoError(t, err)
	_, err = f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)

	runs, err := queue.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "manual", runs[0].Trigger)
	assert.Equal(t, "cron", runs[1].Trigger)
}
