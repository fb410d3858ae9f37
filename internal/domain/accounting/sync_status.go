package accounting

// SyncStatus represents the lifecycle state of a staging row
type SyncStatus string

const (
	// SyncStatusPending indicates the row is awaiting a sync run
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusStaged indicates the row has been claimed by an in-flight sync run
	SyncStatusStaged SyncStatus = "staged"
	// SyncStatusSynced indicates the row was accepted by the accounting provider
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusFailed indicates the last sync attempt errored
	SyncStatusFailed SyncStatus = "failed"
	// SyncStatusIgnore indicates an operator excluded the row from sync
	SyncStatusIgnore SyncStatus = "ignore"
	// SyncStatusPlanned indicates a future-dated row not yet eligible for sync
	SyncStatusPlanned SyncStatus = "planned"
)

// IsValid checks if the status is a valid SyncStatus
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusStaged, SyncStatusSynced,
		SyncStatusFailed, SyncStatusIgnore, SyncStatusPlanned:
		return true
	}
	return false
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no sync run will ever pick the row up again
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusSynced || s == SyncStatusIgnore
}

// CanTransitionTo reports whether the transition is allowed by the
// staging state machine. Claims move pending/failed rows to staged,
// sync outcomes move staged rows to synced or failed, promotion moves
// planned rows to pending, and operators may ignore any non-synced row.
// A staged row may also fall back to pending so rows stranded by a run
// that died mid-flight can be reclaimed.
func (s SyncStatus) CanTransitionTo(target SyncStatus) bool {
	switch s {
	case SyncStatusPending:
		return target == SyncStatusStaged || target == SyncStatusIgnore
	case SyncStatusStaged:
		return target == SyncStatusSynced || target == SyncStatusFailed ||
			target == SyncStatusPending || target == SyncStatusIgnore
	case SyncStatusFailed:
		return target == SyncStatusStaged || target == SyncStatusPending || target == SyncStatusIgnore
	case SyncStatusPlanned:
		return target == SyncStatusPending || target == SyncStatusIgnore
	case SyncStatusSynced, SyncStatusIgnore:
		return false
	}
	return false
}

// AllSyncStatuses returns every valid status, used for admin queue counts
func AllSyncStatuses() []SyncStatus {
	return []SyncStatus{
		SyncStatusPending, SyncStatusStaged, SyncStatusSynced,
		SyncStatusFailed, SyncStatusIgnore, SyncStatusPlanned,
	}
}
