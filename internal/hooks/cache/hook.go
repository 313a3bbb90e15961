// Package cache provides the 05-redis hook.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/internal/hook"
)

const (
	Name        = "05-redis"
	ResourceKey = "redis"
)

// Hook owns the redis client.
type Hook struct {
	cfg config.RedisConfig

	mu     sync.RWMutex
	client *redis.Client
}

func New(cfg config.RedisConfig) *Hook {
	return &Hook{cfg: cfg}
}

// Factory builds the hook from the shared configuration.
func Factory(cfg *config.Config) (any, error) {
	return New(cfg.Redis), nil
}

func (h *Hook) Enabled() bool { return h.cfg.Enabled }

// Init 初始化Redis连接
func (h *Hook) Init(ctx context.Context, o *hook.Orchestrator) error {
	log := o.Logger().Named("redis")
	client, err := Connect(ctx, h.cfg, log)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.client = client
	h.mu.Unlock()

	o.Provide(ResourceKey, client)
	log.Info("redis connected", zap.String("addr", h.cfg.Addr()), zap.Int("db", h.cfg.DB))
	return nil
}

// Destroy 关闭Redis连接
func (h *Hook) Destroy(ctx context.Context, o *hook.Orchestrator) error {
	o.Withdraw(ResourceKey)

	h.mu.Lock()
	client := h.client
	h.client = nil
	h.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Close()
}

func (h *Hook) Reinitialize(ctx context.Context, o *hook.Orchestrator) error {
	return h.Init(ctx, o)
}

// Info reports the pool state.
func (h *Hook) Info(ctx context.Context, o *hook.Orchestrator) (map[string]any, error) {
	client := h.Client()
	if client == nil {
		return nil, errors.New("redis not connected")
	}
	st := client.PoolStats()
	return map[string]any{
		"redis": map[string]any{
			"addr":        h.cfg.Addr(),
			"db":          h.cfg.DB,
			"total_conns": st.TotalConns,
			"idle_conns":  st.IdleConns,
		},
	}, nil
}

// Client returns the current client, or nil when not connected.
func (h *Hook) Client() *redis.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

// Connect creates a client and pings it, retrying with exponential backoff.
func Connect(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	var policy backoff.BackOff = backoff.NewExponentialBackOff()
	policy = backoff.WithMaxRetries(policy, uint64(max(cfg.ConnectRetries, 0)))
	err := backoff.RetryNotify(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		log.Warn("redis ping failed, retrying", zap.String("addr", cfg.Addr()),
			zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
