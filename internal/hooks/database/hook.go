// Package database provides the 05-database hook: a gorm connection pool that
// later hook groups and the HTTP server reach through the "database" resource.
package database

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/internal/hook"
)

const (
	// Name is the registration name of the hook.
	Name = "05-database"
	// ResourceKey is the orchestrator resource holding the *gorm.DB.
	ResourceKey = "database"
)

// Hook owns the database connection.
type Hook struct {
	cfg config.DatabaseConfig

	mu sync.RWMutex
	db *gorm.DB
}

// New creates the hook. The connection is opened by Init.
func New(cfg config.DatabaseConfig) *Hook {
	return &Hook{cfg: cfg}
}

// Factory builds the hook from the shared configuration.
func Factory(cfg *config.Config) (any, error) {
	if cfg.Database.Enabled {
		if _, err := DSN(cfg.Database); err != nil {
			return nil, err
		}
	}
	return New(cfg.Database), nil
}

func (h *Hook) Enabled() bool { return h.cfg.Enabled }

// Init opens the connection and provides it as a resource.
func (h *Hook) Init(ctx context.Context, o *hook.Orchestrator) error {
	db, err := Open(ctx, h.cfg, o.Logger().Named("database"))
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.db = db
	h.mu.Unlock()

	o.Provide(ResourceKey, db)
	o.Logger().Info("database connected", zap.String("driver", h.cfg.Driver),
		zap.Int("replicas", len(h.cfg.Replicas)))
	return nil
}

// Destroy withdraws the resource and closes the pool.
func (h *Hook) Destroy(ctx context.Context, o *hook.Orchestrator) error {
	o.Withdraw(ResourceKey)

	h.mu.Lock()
	db := h.db
	h.db = nil
	h.mu.Unlock()

	return Close(db)
}

// Reinitialize reopens the connection with the same settings.
func (h *Hook) Reinitialize(ctx context.Context, o *hook.Orchestrator) error {
	return h.Init(ctx, o)
}

// Info reports pool statistics.
func (h *Hook) Info(ctx context.Context, o *hook.Orchestrator) (map[string]any, error) {
	db := h.DB()
	if db == nil {
		return nil, errors.New("database not connected")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	st := sqlDB.Stats()
	return map[string]any{
		"database": map[string]any{
			"driver":           h.cfg.Driver,
			"replicas":         len(h.cfg.Replicas),
			"open_connections": st.OpenConnections,
			"in_use":           st.InUse,
			"idle":             st.Idle,
		},
	}, nil
}

// DB returns the current connection, or nil when not connected.
func (h *Hook) DB() *gorm.DB {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.db
}
