package repository

import (
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/employeedir/core/internal/infrastructure/config"
	"github.com/employeedir/core/internal/infrastructure/database"
	"github.com/employeedir/core/internal/ports"
)

// Connections carries the shared clients a backend may need.
// Only the one matching the selected backend has to be set.
type Connections struct {
	DB    *database.DB
	Redis *redis.Client
}

// NewDocumentStore creates the store selected by cfg.Storage.Backend
func NewDocumentStore(cfg *config.Config, conns Connections) (ports.DocumentStore, error) {
	switch cfg.Storage.Backend {
	case "", config.BackendJSON:
		if cfg.Storage.Path == "" {
			return nil, fmt.Errorf("json backend requires a storage path")
		}
		return NewJSONStore(cfg.Storage.Path), nil
	case config.BackendPostgres:
		if conns.DB == nil {
			return nil, fmt.Errorf("postgres backend requires a database connection")
		}
		return NewPostgresStore(conns.DB.DB, cfg.Storage.DocumentName), nil
	case config.BackendRedis:
		if conns.Redis == nil {
			return nil, fmt.Errorf("redis backend requires a redis client")
		}
		return NewRedisStore(conns.Redis, cfg.Redis.KeyPrefix, cfg.Storage.DocumentName), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
