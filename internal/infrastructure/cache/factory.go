package cache

import (
	"fmt"

	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/rinkpass/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore creates the webhook dedupe store. Redis is tried
// first; when it is unreachable the store falls back to in-memory, which is
// fine for a single instance but loses dedupe state across replicas.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err == nil {
		logger.Info("using Redis idempotency store")
		return store, nil
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}

// NewRequiredIdempotencyStore is the strict variant for multi-instance
// deployments where shared dedupe state is mandatory
func NewRequiredIdempotencyStore(cfg config.RedisConfig) (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis required for webhook dedupe but unavailable: %w", err)
	}
	return store, nil
}
