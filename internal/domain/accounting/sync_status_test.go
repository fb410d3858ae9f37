package accounting_test

import (
	"testing"

	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/stretchr/testify/assert"
)

func TestSyncStatusIsValid(t *testing.T) {
	for _, s := range accounting.AllSyncStatuses() {
		assert.True(t, s.IsValid(), "status %s should be valid", s)
	}
	assert.False(t, accounting.SyncStatus("bogus").IsValid())
	assert.False(t, accounting.SyncStatus("").IsValid())
}

func TestSyncStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    accounting.SyncStatus
		to      accounting.SyncStatus
		allowed bool
	}{
		{"pending claimed by run", accounting.SyncStatusPending, accounting.SyncStatusStaged, true},
		{"pending ignored by operator", accounting.SyncStatusPending, accounting.SyncStatusIgnore, true},
		{"pending cannot jump to synced", accounting.SyncStatusPending, accounting.SyncStatusSynced, false},
		{"staged to synced", accounting.SyncStatusStaged, accounting.SyncStatusSynced, true},
		{"staged to failed", accounting.SyncStatusStaged, accounting.SyncStatusFailed, true},
		{"staged ignored by operator", accounting.SyncStatusStaged, accounting.SyncStatusIgnore, true},
		{"stale staged reclaimed to pending", accounting.SyncStatusStaged, accounting.SyncStatusPending, true},
		{"staged cannot jump to planned", accounting.SyncStatusStaged, accounting.SyncStatusPlanned, false},
		{"failed reclaimed for retry", accounting.SyncStatusFailed, accounting.SyncStatusStaged, true},
		{"failed requeued manually", accounting.SyncStatusFailed, accounting.SyncStatusPending, true},
		{"failed ignored by operator", accounting.SyncStatusFailed, accounting.SyncStatusIgnore, true},
		{"planned promoted to pending", accounting.SyncStatusPlanned, accounting.SyncStatusPending, true},
		{"planned ignored by operator", accounting.SyncStatusPlanned, accounting.SyncStatusIgnore, true},
		{"planned cannot be claimed directly", accounting.SyncStatusPlanned, accounting.SyncStatusStaged, false},
		{"synced is terminal", accounting.SyncStatusSynced, accounting.SyncStatusPending, false},
		{"ignore is terminal", accounting.SyncStatusIgnore, accounting.SyncStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSyncStatusIsTerminal(t *testing.T) {
	assert.True(t, accounting.SyncStatusSynced.IsTerminal())
	assert.True(t, accounting.SyncStatusIgnore.IsTerminal())
	assert.False(t, accounting.SyncStatusPending.IsTerminal())
	assert.False(t, accounting.SyncStatusStaged.IsTerminal())
	assert.False(t, accounting.SyncStatusFailed.IsTerminal())
	assert.False(t, accounting.SyncStatusPlanned.IsTerminal())
}
