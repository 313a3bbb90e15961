// Package scheduler provides the 20-scheduler hook. It runs in the last group,
// after every connection is up, so jobs added through the "scheduler"
// resource can rely on the database, cache and storage resources.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/common/logger"
	"yqhp/hookserver/internal/hook"
)

const (
	Name        = "20-scheduler"
	ResourceKey = "scheduler"

	heartbeatJob = "heartbeat"
)

// Hook owns a gocron scheduler.
type Hook struct {
	cfg config.SchedulerConfig

	mu    sync.RWMutex
	sched gocron.Scheduler
}

func New(cfg config.SchedulerConfig) *Hook {
	return &Hook{cfg: cfg}
}

func Factory(cfg *config.Config) (any, error) {
	return New(cfg.Scheduler), nil
}

func (h *Hook) Enabled() bool { return h.cfg.Enabled }

// Init creates and starts the scheduler.
func (h *Hook) Init(ctx context.Context, o *hook.Orchestrator) error {
	log := o.Logger().Named("scheduler")
	s, err := gocron.NewScheduler(gocron.WithLogger(logger.NewGocronLogger(log)))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	if h.cfg.Heartbeat > 0 {
		_, err = s.NewJob(
			gocron.DurationJob(h.cfg.Heartbeat),
			gocron.NewTask(func() {
				log.Info("scheduler heartbeat", zap.String("state", o.State().String()),
					zap.Strings("resources", o.ResourceKeys()))
			}),
			gocron.WithName(heartbeatJob),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return fmt.Errorf("add heartbeat job: %w", err)
		}
	}

	s.Start()

	h.mu.Lock()
	h.sched = s
	h.mu.Unlock()

	o.Provide(ResourceKey, s)
	log.Info("scheduler started", zap.Int("jobs", len(s.Jobs())))
	return nil
}

// Destroy stops the scheduler and waits for running jobs.
func (h *Hook) Destroy(ctx context.Context, o *hook.Orchestrator) error {
	o.Withdraw(ResourceKey)

	h.mu.Lock()
	s := h.sched
	h.sched = nil
	h.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Shutdown()
}

// Reinitialize builds a new scheduler. Jobs added by other components to the
// old one are not carried over.
func (h *Hook) Reinitialize(ctx context.Context, o *hook.Orchestrator) error {
	return h.Init(ctx, o)
}

func (h *Hook) Info(ctx context.Context, o *hook.Orchestrator) (map[string]any, error) {
	s := h.Scheduler()
	if s == nil {
		return nil, errors.New("scheduler not running")
	}
	names := make([]string, 0)
	for _, j := range s.Jobs() {
		names = append(names, j.Name())
	}
	return map[string]any{
		"scheduler": map[string]any{
			"jobs":  len(names),
			"names": names,
		},
	}, nil
}

// Scheduler returns the running scheduler, or nil.
func (h *Hook) Scheduler() gocron.Scheduler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sched
}
