package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed external event ids so a
// redelivered Stripe webhook is acknowledged without being applied
// twice.
type IdempotencyStore interface {
	// MarkProcessed records the event id with a TTL. It reports false
	// when the id was already present, meaning this delivery is a
	// replay.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event id has been seen.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Release forgets the event id so a later delivery can claim it
	// again. Used when processing fails after the id was claimed.
	Release(ctx context.Context, eventID string) error

	Close() error
}

// IdempotencyConfig controls webhook dedupe behaviour.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps event ids for a day, comfortably past
// Stripe's retry window.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
