package postedstore

import (
	"fmt"

	"github.com/lemonco/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewFromConfig creates a posted-status store per configuration. The redis
// backend is required when configured: falling back silently to in-memory
// would lose posted status across instances and let a posted document be
// posted again elsewhere.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.PostedStore.Backend {
	case "redis":
		store, err := NewRedisStore(RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.PostedStore.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis posted-status store: %w", err)
		}
		logger.Info("using Redis posted-status store",
			zap.String("host", cfg.Redis.Host),
			zap.String("key_prefix", cfg.PostedStore.KeyPrefix),
		)
		return store, nil

	case "memory":
		logger.Warn("using in-memory posted-status store; posted status will not survive restarts " +
			"and is not shared across instances")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown posted_store.backend %q", cfg.PostedStore.Backend)
	}
}
