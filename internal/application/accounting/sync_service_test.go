package accounting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type syncFixture struct {
	svc         *SyncService
	invoiceRepo *memInvoiceStagingRepo
	paymentRepo *memPaymentStagingRepo
	runRepo     *memSyncRunRepo
	gateway     *fakeXeroGateway
}

func newSyncFixture(t *testing.T, batchSize int) *syncFixture {
	t.Helper()
	invoiceRepo := newMemInvoiceStagingRepo()
	paymentRepo := newMemPaymentStagingRepo()
	runRepo := newMemSyncRunRepo()
	gateway := newFakeXeroGateway()
	return &syncFixture{
		svc:         NewSyncService(invoiceRepo, paymentRepo, runRepo, gateway, batchSize, zap.NewNop()),
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		runRepo:     runRepo,
		gateway:     gateway,
	}
}

func (f *syncFixture) addInvoiceRow(t *testing.T, registrationID uuid.UUID) *accounting.InvoiceStaging {
	t.Helper()
	row, err := accounting.NewInvoiceStaging(
		accounting.InvoiceKindInvoice, registrationID, uuid.New(),
		"Jamie Okafor", "jamie@example.com",
		"REG-2026-0042", "Season registration", "200",
		decimal.NewFromInt(350), "AUD",
		time.Now(), time.Now(),
		accounting.InvoiceIdempotencyKey(registrationID),
		accounting.StagingMetadata{RegistrationID: &registrationID},
	)
	require.NoError(t, err)
	require.NoError(t, f.invoiceRepo.Save(context.Background(), row))
	return row
}

func (f *syncFixture) addPaymentRow(t *testing.T, invoice *accounting.InvoiceStaging) *accounting.PaymentStaging {
	t.Helper()
	paymentID := uuid.New()
	row, err := accounting.NewPaymentStaging(
		invoice.ID, paymentID, invoice.RegistrationID, invoice.MemberID,
		invoice.Amount, invoice.Currency, "090", time.Now(),
		accounting.PaymentIdempotencyKey(paymentID),
		accounting.StagingMetadata{PaymentID: &paymentID},
	)
	require.NoError(t, err)
	require.NoError(t, f.paymentRepo.Save(context.Background(), row))
	return row
}

func TestSyncServiceRunDrainsInvoicesThenPayments(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)

	invoice := f.addInvoiceRow(t, uuid.New())
	payment := f.addPaymentRow(t, invoice)

	result, err := f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, 1, result.Invoices.Synced)
	assert.Equal(t, 1, result.Payments.Synced)
	assert.Zero(t, result.Invoices.Failed)
	assert.Zero(t, result.Payments.Failed)

	assert.Equal(t, accounting.SyncStatusSynced, invoice.SyncStatus)
	assert.NotEmpty(t, invoice.XeroInvoiceID)
	assert.Equal(t, accounting.SyncStatusSynced, payment.SyncStatus)
	assert.NotEmpty(t, payment.XeroPaymentID)

	// The run was recorded and finished
	runs, err := f.runRepo.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, accounting.SyncRunStatusCompleted, runs[0].Status)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestSyncServiceRunDrainsInBatches(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 2)

	for i := 0; i < 5; i++ {
		f.addInvoiceRow(t, uuid.New())
	}

	result, err := f.svc.Run(ctx, accounting.SyncTriggerCron)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Invoices.Total)
	assert.Equal(t, 5, result.Invoices.Synced)

	counts, err := f.invoiceRepo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts[accounting.SyncStatusSynced])
}

func TestSyncServiceSkipsPaymentUntilInvoiceSynced(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)

	invoice := f.addInvoiceRow(t, uuid.New())
	payment := f.addPaymentRow(t, invoice)
	f.gateway.failInvoice[invoice.IdempotencyKey] = errors.New("xero: 503")

	result, err := f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Invoices.Failed)
	assert.Equal(t, 1, result.Payments.Skipped)
	assert.Zero(t, result.Payments.Synced)

	// The skipped payment went back to pending without burning a retry
	assert.Equal(t, accounting.SyncStatusPending, payment.SyncStatus)
	assert.Zero(t, payment.RetryCount)

	// Invoice recovers on the next run once its retry is due, and the
	// payment follows in the same run
	delete(f.gateway.failInvoice, invoice.IdempotencyKey)
	past := time.Now().Add(-time.Second)
	invoice.NextRetryAt = &past

	result, err = f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Invoices.Synced)
	assert.Equal(t, 1, result.Payments.Synced)
	assert.Equal(t, accounting.SyncStatusSynced, payment.SyncStatus)
}

func TestSyncServiceFailureSchedulesBackoff(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)

	invoice := f.addInvoiceRow(t, uuid.New())
	f.gateway.failInvoice[invoice.IdempotencyKey] = errors.New("xero: validation error")

	result, err := f.svc.Run(ctx, accounting.SyncTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, 1, result.Invoices.Failed)

	assert.Equal(t, accounting.SyncStatusFailed, invoice.SyncStatus)
	assert.Equal(t, 1, invoice.RetryCount)
	assert.Equal(t, "xero: validation error", invoice.SyncError)
	require.NotNil(t, invoice.NextRetryAt)
	assert.True(t, invoice.NextRetryAt.After(time.Now()))
}

func TestSyncServiceStopsRetryingAfterBudget(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)

	invoice := f.addInvoiceRow(t, uuid.New())
	f.gateway.failInvoice[invoice.IdempotencyKey] = errors.New("xero: contact archived")
	invoice.RetryCount = accounting.StagingMaxRetries - 1

	_, err := f.svc.Run(ctx, accounting.SyncTriggerCron)
	require.NoError(t, err)

	assert.True(t, invoice.RetriesExhausted())
	assert.Nil(t, invoice.NextRetryAt)

	// Nothing left to claim, the dead row waits for an operator
	result, err := f.svc.Run(ctx, accounting.SyncTriggerCron)
	require.NoError(t, err)
	assert.Zero(t, result.Invoices.Total)
}

func TestSyncServiceReclaimsRowsStrandedByDeadRun(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)

	stranded := f.addInvoiceRow(t, uuid.New())
	require.NoError(t, stranded.MarkStaged())
	stranded.UpdatedAt = time.Now().Add(-2 * accounting.StagingStaleClaimAfter)

	fresh := f.addInvoiceRow(t, uuid.New())
	require.NoError(t, fresh.MarkStaged())

	result, err := f.svc.Run(ctx, accounting.SyncTriggerCron)
	require.NoError(t, err)

	// Only the row abandoned by the dead run is returned to the queue
	// and synced. The freshly staged one belongs to another run.
	assert.Equal(t, 1, result.Invoices.Synced)
	assert.Equal(t, accounting.SyncStatusSynced, stranded.SyncStatus)
	assert.Equal(t, accounting.SyncStatusStaged, fresh.SyncStatus)
}

func TestSyncServicePromotesDuePlannedRows(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)

	invoice := f.addInvoiceRow(t, uuid.New())
	require.NoError(t, invoice.MarkStaged())
	require.NoError(t, invoice.MarkSynced("xero-inv-preexisting"))

	due := time.Now().Add(-24 * time.Hour)
	installmentID := uuid.New()
	planned, err := accounting.NewPlannedPaymentStaging(
		invoice.ID, installmentID, invoice.RegistrationID, invoice.MemberID,
		decimal.NewFromInt(175), "AUD", "090", due,
		accounting.InstallmentIdempotencyKey(installmentID),
		accounting.StagingMetadata{InstallmentID: &installmentID},
	)
	require.NoError(t, err)
	require.NoError(t, f.paymentRepo.Save(ctx, planned))

	result, err := f.svc.Run(ctx, accounting.SyncTriggerCron)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Promoted)
	assert.Equal(t, 1, result.Payments.Synced)
	assert.Equal(t, accounting.SyncStatusSynced, planned.SyncStatus)
}

func TestSyncServiceFutureDatedRowsStayPlanned(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, 10)

	invoice := f.addInvoiceRow(t, uuid.New())
	installmentID := uuid.New()
	planned, err := accounting.NewPlannedPaymentStaging(
		invoice.ID, installmentID, invoice.RegistrationID, invoice.MemberID,
		decimal.NewFromInt(175), "AUD", "090", time.Now().Add(30*24*time.Hour),
		accounting.InstallmentIdempotencyKey(installmentID),
		accounting.StagingMetadata{InstallmentID: &installmentID},
	)
	require.NoError(t, err)
	require.NoError(t, f.paymentRepo.Save(ctx, planned))

	result, err := f.svc.Run(ctx, accounting.SyncTriggerCron)
	require.NoError(t, err)

	assert.Zero(t, result.Promoted)
	assert.Zero(t, result.Payments.Total)
	assert.Equal(t, accounting.SyncStatusPlanned, planned.SyncStatus)
}

func TestSyncServiceRejectsInvalidTrigger(t *testing.T) {
	f := newSyncFixture(t, 10)
	_, err := f.svc.Run(context.Background(), accounting.SyncTrigger("webhook"))
	assert.Error(t, err)
}
