package bootstrap

import (
	"context"
	"fmt"
	"log"

	"simple-notes-be/internal/config"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/internal/repository/memory"
	"simple-notes-be/internal/repository/relational"
	"simple-notes-be/pkg/database"
	"simple-notes-be/pkg/kvstore"
)

// NewKVEngine opens the key-value engine behind the local backend.
func NewKVEngine(cfg config.LocalStorageConfig) (kvstore.Engine, error) {
	switch cfg.Engine {
	case "redis":
		engine := kvstore.NewRedisEngine(cfg.RedisURL, cfg.Namespace)
		if err := engine.Ping(context.Background()); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		return engine, nil
	case "cache", "":
		return kvstore.NewCacheEngine(cfg.SnapshotPath)
	default:
		return nil, fmt.Errorf("unsupported local KV engine %q", cfg.Engine)
	}
}

// NewStorageBackend builds the backend selected by STORAGE_BACKEND. The
// relational schema is migrated on startup.
func NewStorageBackend(cfg *config.Config, log logger.ILogger) (contract.StorageBackend, error) {
	switch cfg.Database.Backend {
	case contract.BackendLocal:
		engine, err := NewKVEngine(cfg.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to open local storage: %w", err)
		}
		return memory.NewLocalBackend(engine, log), nil

	case contract.BackendRelational, "":
		db, err := database.NewGormDB(database.GormConfig{
			Driver: cfg.Database.Driver,
			DSN:    cfg.Database.Connection,
		})
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		if err := relational.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		return relational.NewBackend(db, log), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Database.Backend)
	}
}
