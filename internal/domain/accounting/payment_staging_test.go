package accounting_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaymentStaging(t *testing.T) *accounting.PaymentStaging {
	t.Helper()
	paymentID := uuid.New()
	row, err := accounting.NewPaymentStaging(
		uuid.New(),
		paymentID,
		uuid.New(),
		uuid.New(),
		decimal.NewFromInt(450),
		"AUD",
		"090",
		time.Now(),
		accounting.PaymentIdempotencyKey(paymentID),
		accounting.StagingMetadata{PaymentID: &paymentID},
	)
	require.NoError(t, err)
	return row
}

func TestNewPaymentStaging(t *testing.T) {
	row := newTestPaymentStaging(t)

	assert.Equal(t, accounting.SyncStatusPending, row.SyncStatus)
	assert.Nil(t, row.DueAt)
	assert.Len(t, row.GetDomainEvents(), 1)
	assert.Equal(t, "PaymentStagingCreated", row.GetDomainEvents()[0].EventType())
}

func TestNewPaymentStagingValidation(t *testing.T) {
	paymentID := uuid.New()

	tests := []struct {
		name             string
		invoiceStagingID uuid.UUID
		paymentID        uuid.UUID
		amount           decimal.Decimal
		bankAccountCode  string
		idemKey          string
		expectedErr      string
	}{
		{
			name:             "nil invoice staging id",
			invoiceStagingID: uuid.Nil,
			paymentID:        paymentID,
			amount:           decimal.NewFromInt(450),
			bankAccountCode:  "090",
			idemKey:          "payment:x",
			expectedErr:      "Invoice staging ID cannot be empty",
		},
		{
			name:             "nil payment id",
			invoiceStagingID: uuid.New(),
			paymentID:        uuid.Nil,
			amount:           decimal.NewFromInt(450),
			bankAccountCode:  "090",
			idemKey:          "payment:x",
			expectedErr:      "Payment ID cannot be empty",
		},
		{
			name:             "negative amount",
			invoiceStagingID: uuid.New(),
			paymentID:        paymentID,
			amount:           decimal.NewFromInt(-10),
			bankAccountCode:  "090",
			idemKey:          "payment:x",
			expectedErr:      "Amount must be positive",
		},
		{
			name:             "empty bank account code",
			invoiceStagingID: uuid.New(),
			paymentID:        paymentID,
			amount:           decimal.NewFromInt(450),
			bankAccountCode:  "",
			idemKey:          "payment:x",
			expectedErr:      "Bank account code cannot be empty",
		},
		{
			name:             "empty idempotency key",
			invoiceStagingID: uuid.New(),
			paymentID:        paymentID,
			amount:           decimal.NewFromInt(450),
			bankAccountCode:  "090",
			idemKey:          "",
			expectedErr:      "Idempotency key cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := accounting.NewPaymentStaging(
				tt.invoiceStagingID, tt.paymentID, uuid.New(), uuid.New(),
				tt.amount, "AUD", tt.bankAccountCode, time.Now(),
				tt.idemKey, accounting.StagingMetadata{},
			)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
			assert.Nil(t, row)
		})
	}
}

func TestPlannedPaymentStagingPromotion(t *testing.T) {
	paymentID := uuid.New()
	dueAt := time.Now().AddDate(0, 1, 0)

	row, err := accounting.NewPlannedPaymentStaging(
		uuid.New(), paymentID, uuid.New(), uuid.New(),
		decimal.NewFromInt(150), "AUD", "090", dueAt,
		accounting.InstallmentIdempotencyKey(uuid.New()),
		accounting.StagingMetadata{PaymentID: &paymentID},
	)
	require.NoError(t, err)

	assert.Equal(t, accounting.SyncStatusPlanned, row.SyncStatus)
	require.NotNil(t, row.DueAt)
	assert.True(t, row.IsPlanned())

	// Planned rows cannot be claimed by a run
	assert.Error(t, row.MarkStaged())

	paidAt := time.Now()
	require.NoError(t, row.Promote(paidAt))
	assert.Equal(t, accounting.SyncStatusPending, row.SyncStatus)
	assert.Equal(t, paidAt, row.PaidAt)

	// Promotion only applies to planned rows
	assert.Error(t, row.Promote(paidAt))
}

func TestPaymentStagingSyncLifecycle(t *testing.T) {
	row := newTestPaymentStaging(t)

	require.NoError(t, row.MarkStaged())
	require.NoError(t, row.MarkSynced("xero-pay-789"))

	assert.True(t, row.IsSynced())
	assert.Equal(t, "xero-pay-789", row.XeroPaymentID)
	assert.NotNil(t, row.SyncedAt)
	assert.Error(t, row.MarkStaged())
}

func TestPaymentStagingRequeueDoesNotCountAttempt(t *testing.T) {
	row := newTestPaymentStaging(t)

	require.NoError(t, row.MarkStaged())
	require.NoError(t, row.Requeue())

	assert.Equal(t, accounting.SyncStatusPending, row.SyncStatus)
	assert.Equal(t, 0, row.RetryCount)
	assert.Empty(t, row.SyncError)

	// Requeue only applies to claimed rows
	assert.Error(t, row.Requeue())
}

func TestPaymentStagingFailureRetryAndIgnore(t *testing.T) {
	row := newTestPaymentStaging(t)

	require.NoError(t, row.MarkStaged())
	require.NoError(t, row.MarkFailed("invoice not found in Xero"))
	assert.Equal(t, 1, row.RetryCount)
	require.NotNil(t, row.NextRetryAt)

	require.NoError(t, row.ResetForRetry())
	assert.Equal(t, 0, row.RetryCount)

	require.NoError(t, row.MarkIgnored("written off"))
	assert.Equal(t, accounting.SyncStatusIgnore, row.SyncStatus)
	assert.Error(t, row.ResetForRetry())
}

func TestPaymentStagingRetryExhaustionRaisesEvent(t *testing.T) {
	row := newTestPaymentStaging(t)
	row.ClearDomainEvents()

	for i := 0; i < accounting.StagingMaxRetries; i++ {
		require.NoError(t, row.MarkStaged())
		require.NoError(t, row.MarkFailed("account archived"))
	}

	assert.True(t, row.RetriesExhausted())
	events := row.GetDomainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, "StagingSyncExhausted", events[len(events)-1].EventType())
}
