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

func newTestInvoiceStaging(t *testing.T) *accounting.InvoiceStaging {
	t.Helper()
	registrationID := uuid.New()
	memberID := uuid.New()
	row, err := accounting.NewInvoiceStaging(
		accounting.InvoiceKindInvoice,
		registrationID,
		memberID,
		"Jamie Fraser",
		"jamie@example.com",
		"REG-2026-0042",
		"2026/27 Senior Membership",
		"200",
		decimal.NewFromInt(450),
		"AUD",
		time.Now(),
		time.Now().AddDate(0, 0, 14),
		accounting.InvoiceIdempotencyKey(registrationID),
		accounting.StagingMetadata{
			RegistrationID: &registrationID,
			MemberID:       &memberID,
		},
	)
	require.NoError(t, err)
	return row
}

func TestNewInvoiceStaging(t *testing.T) {
	registrationID := uuid.New()
	memberID := uuid.New()

	tests := []struct {
		name        string
		kind        accounting.InvoiceKind
		regID       uuid.UUID
		memberID    uuid.UUID
		contactName string
		accountCode string
		amount      decimal.Decimal
		currency    string
		idemKey     string
		expectedErr string
	}{
		{
			name:        "valid invoice row",
			kind:        accounting.InvoiceKindInvoice,
			regID:       registrationID,
			memberID:    memberID,
			contactName: "Jamie Fraser",
			accountCode: "200",
			amount:      decimal.NewFromInt(450),
			currency:    "AUD",
			idemKey:     accounting.InvoiceIdempotencyKey(registrationID),
		},
		{
			name:        "valid credit note row",
			kind:        accounting.InvoiceKindCreditNote,
			regID:       registrationID,
			memberID:    memberID,
			contactName: "Jamie Fraser",
			accountCode: "200",
			amount:      decimal.NewFromInt(100),
			currency:    "AUD",
			idemKey:     accounting.CreditNoteIdempotencyKey(uuid.New()),
		},
		{
			name:        "invalid kind",
			kind:        accounting.InvoiceKind("RECEIPT"),
			regID:       registrationID,
			memberID:    memberID,
			contactName: "Jamie Fraser",
			accountCode: "200",
			amount:      decimal.NewFromInt(450),
			currency:    "AUD",
			idemKey:     "invoice:x",
			expectedErr: "Invalid invoice kind",
		},
		{
			name:        "nil registration",
			kind:        accounting.InvoiceKindInvoice,
			regID:       uuid.Nil,
			memberID:    memberID,
			contactName: "Jamie Fraser",
			accountCode: "200",
			amount:      decimal.NewFromInt(450),
			currency:    "AUD",
			idemKey:     "invoice:x",
			expectedErr: "Registration ID cannot be empty",
		},
		{
			name:        "empty contact name",
			kind:        accounting.InvoiceKindInvoice,
			regID:       registrationID,
			memberID:    memberID,
			contactName: "",
			accountCode: "200",
			amount:      decimal.NewFromInt(450),
			currency:    "AUD",
			idemKey:     "invoice:x",
			expectedErr: "Contact name cannot be empty",
		},
		{
			name:        "empty account code",
			kind:        accounting.InvoiceKindInvoice,
			regID:       registrationID,
			memberID:    memberID,
			contactName: "Jamie Fraser",
			accountCode: "",
			amount:      decimal.NewFromInt(450),
			currency:    "AUD",
			idemKey:     "invoice:x",
			expectedErr: "Account code cannot be empty",
		},
		{
			name:        "zero amount",
			kind:        accounting.InvoiceKindInvoice,
			regID:       registrationID,
			memberID:    memberID,
			contactName: "Jamie Fraser",
			accountCode: "200",
			amount:      decimal.Zero,
			currency:    "AUD",
			idemKey:     "invoice:x",
			expectedErr: "Amount must be positive",
		},
		{
			name:        "missing idempotency key",
			kind:        accounting.InvoiceKindInvoice,
			regID:       registrationID,
			memberID:    memberID,
			contactName: "Jamie Fraser",
			accountCode: "200",
			amount:      decimal.NewFromInt(450),
			currency:    "AUD",
			idemKey:     "",
			expectedErr: "Idempotency key cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := accounting.NewInvoiceStaging(
				tt.kind, tt.regID, tt.memberID, tt.contactName, "jamie@example.com",
				"REG-2026-0042", "2026/27 Senior Membership", tt.accountCode,
				tt.amount, tt.currency, time.Now(), time.Now().AddDate(0, 0, 14),
				tt.idemKey, accounting.StagingMetadata{},
			)

			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				assert.Nil(t, row)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, accounting.SyncStatusPending, row.SyncStatus)
			assert.Equal(t, 0, row.RetryCount)
			assert.Equal(t, accounting.StagingMaxRetries, row.MaxRetries)
			assert.Len(t, row.GetDomainEvents(), 1)
			assert.Equal(t, "InvoiceStagingCreated", row.GetDomainEvents()[0].EventType())
		})
	}
}

func TestInvoiceStagingSyncLifecycle(t *testing.T) {
	row := newTestInvoiceStaging(t)

	require.NoError(t, row.MarkStaged())
	assert.Equal(t, accounting.SyncStatusStaged, row.SyncStatus)

	require.NoError(t, row.MarkSynced("xero-inv-123"))
	assert.Equal(t, accounting.SyncStatusSynced, row.SyncStatus)
	assert.Equal(t, "xero-inv-123", row.XeroInvoiceID)
	assert.NotNil(t, row.SyncedAt)
	assert.True(t, row.IsSynced())

	// Synced is terminal
	assert.Error(t, row.MarkStaged())
	assert.Error(t, row.MarkFailed("boom"))
	assert.Error(t, row.MarkIgnored("nope"))
}

func TestInvoiceStagingMarkSyncedRequiresRemoteID(t *testing.T) {
	row := newTestInvoiceStaging(t)
	require.NoError(t, row.MarkStaged())
	assert.Error(t, row.MarkSynced(""))
}

func TestInvoiceStagingFailureAndRetry(t *testing.T) {
	row := newTestInvoiceStaging(t)

	require.NoError(t, row.MarkStaged())
	require.NoError(t, row.MarkFailed("validation error from Xero"))

	assert.Equal(t, accounting.SyncStatusFailed, row.SyncStatus)
	assert.Equal(t, 1, row.RetryCount)
	assert.Equal(t, "validation error from Xero", row.SyncError)
	require.NotNil(t, row.NextRetryAt)
	assert.True(t, row.NextRetryAt.After(time.Now()))
	assert.False(t, row.RetriesExhausted())

	// A failed row can be reclaimed by the next run
	require.NoError(t, row.MarkStaged())
	require.NoError(t, row.MarkSynced("xero-inv-456"))
	assert.Empty(t, row.SyncError)
	assert.Nil(t, row.NextRetryAt)
}

func TestInvoiceStagingBackoffGrows(t *testing.T) {
	row := newTestInvoiceStaging(t)

	var prev time.Time
	for i := 0; i < 3; i++ {
		require.NoError(t, row.MarkStaged())
		require.NoError(t, row.MarkFailed("still broken"))
		require.NotNil(t, row.NextRetryAt)
		if i > 0 {
			assert.True(t, row.NextRetryAt.After(prev), "retry %d should back off further", i)
		}
		prev = *row.NextRetryAt
	}
	assert.Equal(t, 3, row.RetryCount)
}

func TestInvoiceStagingRetryExhaustion(t *testing.T) {
	row := newTestInvoiceStaging(t)
	row.ClearDomainEvents()

	for i := 0; i < accounting.StagingMaxRetries; i++ {
		require.NoError(t, row.MarkStaged())
		require.NoError(t, row.MarkFailed("permanently broken"))
	}

	assert.True(t, row.RetriesExhausted())
	assert.Nil(t, row.NextRetryAt)

	// Exhaustion raises an alerting event
	events := row.GetDomainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, "StagingSyncExhausted", events[len(events)-1].EventType())

	// Automatic claim is done, operator can still requeue or ignore
	require.NoError(t, row.ResetForRetry())
	assert.Equal(t, accounting.SyncStatusPending, row.SyncStatus)
	assert.Equal(t, 0, row.RetryCount)
	assert.Empty(t, row.SyncError)
}

func TestInvoiceStagingIgnore(t *testing.T) {
	row := newTestInvoiceStaging(t)

	require.NoError(t, row.MarkIgnored("duplicate of manual entry"))
	assert.Equal(t, accounting.SyncStatusIgnore, row.SyncStatus)
	assert.Equal(t, "duplicate of manual entry", row.SyncError)

	// Ignore is terminal
	assert.Error(t, row.MarkStaged())
	assert.Error(t, row.ResetForRetry())
}

func TestInvoiceStagingStagedRowStaysOperatorActionable(t *testing.T) {
	row := newTestInvoiceStaging(t)
	require.NoError(t, row.MarkStaged())

	// A row left in staged by a run that died before recording an outcome
	// must not be stranded: the operator can still exclude it from sync.
	require.NoError(t, row.MarkIgnored("stranded by dead run"))
	assert.Equal(t, accounting.SyncStatusIgnore, row.SyncStatus)
}

func TestInvoiceIdempotencyKeyIsDeterministic(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, accounting.InvoiceIdempotencyKey(id), accounting.InvoiceIdempotencyKey(id))
	assert.NotEqual(t, accounting.InvoiceIdempotencyKey(id), accounting.InvoiceIdempotencyKey(uuid.New()))
}
