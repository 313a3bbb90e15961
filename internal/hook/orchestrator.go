package hook

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yqhp/hookserver/common/config"
)

// Orchestrator owns the hook registry and drives it through init, destroy and
// reinitialize. It is passed to every hook call so hooks can reach the shared
// configuration, the logger and resources provided by earlier groups.
type Orchestrator struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *Metrics
	timeout time.Duration

	// mu serializes transitions; PublicInfo holds it for reading.
	mu        sync.RWMutex
	state     atomic.Int32
	registry  atomic.Pointer[Registry]
	resources *resources
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics enables prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithCallTimeout overrides hooks.timeout. Zero disables the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// New 创建编排器。cfg 为 nil 时使用默认配置。
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := &Orchestrator{
		cfg:       cfg,
		log:       zap.NewNop(),
		timeout:   cfg.Hooks.Timeout,
		resources: newResources(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.Named("hooks")
	o.metrics.setState(StateUninitialized)
	return o
}

// Config returns the shared configuration.
func (o *Orchestrator) Config() *config.Config { return o.cfg }

// Logger returns the orchestrator logger.
func (o *Orchestrator) Logger() *zap.Logger { return o.log }

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return State(o.state.Load()) }

// Initialized reports whether the orchestrator is ready.
func (o *Orchestrator) Initialized() bool { return o.State() == StateReady }

// Registry returns the registry built by the last InitHooks, or nil.
func (o *Orchestrator) Registry() *Registry {
	return o.registry.Load()
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
	o.metrics.setState(s)
}

// InitHooks 注册候选钩子并按组依次初始化。
//
// It is allowed only while uninitialized. If registration fails the
// orchestrator stays uninitialized. If an Init fails, later groups are not
// started, the error is returned unchanged and the orchestrator enters
// StateFailed; hooks that completed Init are not rolled back.
func (o *Orchestrator) InitHooks(ctx context.Context, candidates Candidates) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s := o.State(); s != StateUninitialized {
		return NewStateError(PhaseInit, s, ErrAlreadyInitialized)
	}

	runID := uuid.NewString()
	log := o.log.With(zap.String("run_id", runID), zap.String("transition", string(PhaseInit)))
	start := time.Now()

	o.registry.Store(nil)
	reg, err := Register(o.cfg, candidates, log)
	if err != nil {
		o.metrics.recordTransition(PhaseRegister, err)
		log.Error("hook registration failed", zap.Error(err))
		return err
	}
	o.registry.Store(reg)
	o.setState(StateInitializing)
	log.Info("initializing hooks", zap.Int("hooks", reg.Len()))

	err = o.runGroups(ctx, log, Ascending, PhaseInit, func(e *entry) call {
		return e.hook.Init
	}, func(e *entry) {
		e.ready.Store(true)
	})
	o.metrics.recordTransition(PhaseInit, err)
	if err != nil {
		o.setState(StateFailed)
		log.Error("hook initialization failed", zap.Error(err))
		return err
	}

	o.setState(StateReady)
	log.Info("hooks initialized", zap.Duration("took", time.Since(start)))
	return nil
}

// KillHooks 按组逆序销毁钩子。
//
// It is allowed while ready, and while failed so that a partial init or reset
// can be cleaned up: only hooks whose Init or Reinitialize succeeded and that
// have not been destroyed since are destroyed. On success the orchestrator
// returns to StateUninitialized and InitHooks may be called again.
func (o *Orchestrator) KillHooks(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.State()
	if s != StateReady && s != StateFailed {
		return NewStateError(PhaseDestroy, s, ErrNotInitialized)
	}

	log := o.log.With(zap.String("run_id", uuid.NewString()), zap.String("transition", string(PhaseDestroy)))
	start := time.Now()
	o.setState(StateDestroying)
	log.Info("destroying hooks", zap.String("from", s.String()))

	if err := o.destroyAll(ctx, log); err != nil {
		o.setState(StateFailed)
		log.Error("hook destroy failed", zap.Error(err))
		return err
	}

	reg := o.registry.Load()
	for _, name := range reg.names {
		reg.entry(name).ready.Store(false)
	}
	o.setState(StateUninitialized)
	log.Info("hooks destroyed", zap.Duration("took", time.Since(start)))
	return nil
}

// ResetHooks 销毁后重新初始化所有钩子，复用已注册的实例。
//
// Destroy runs in descending group order, then Reinitialize in ascending
// order. A hook with Destroy but no Reinitialize stays destroyed.
func (o *Orchestrator) ResetHooks(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s := o.State(); s != StateReady {
		return NewStateError(PhaseReinitialize, s, ErrNotInitialized)
	}

	log := o.log.With(zap.String("run_id", uuid.NewString()), zap.String("transition", string(PhaseReinitialize)))
	start := time.Now()
	o.setState(StateDestroying)
	log.Info("resetting hooks")

	if err := o.destroyAll(ctx, log); err != nil {
		o.setState(StateFailed)
		log.Error("hook destroy failed during reset", zap.Error(err))
		return err
	}

	o.setState(StateReinitializing)
	err := o.runGroups(ctx, log, Ascending, PhaseReinitialize, func(e *entry) call {
		if e.reinit == nil {
			return nil
		}
		return e.reinit.Reinitialize
	}, func(e *entry) {
		e.ready.Store(true)
	})
	o.metrics.recordTransition(PhaseReinitialize, err)
	if err != nil {
		o.setState(StateFailed)
		log.Error("hook reinitialize failed", zap.Error(err))
		return err
	}

	o.setState(StateReady)
	log.Info("hooks reset", zap.Duration("took", time.Since(start)))
	return nil
}

func (o *Orchestrator) destroyAll(ctx context.Context, log *zap.Logger) error {
	err := o.runGroups(ctx, log, Descending, PhaseDestroy, func(e *entry) call {
		if e.destroyer == nil || !e.ready.Load() {
			return nil
		}
		return e.destroyer.Destroy
	}, func(e *entry) {
		e.ready.Store(false)
	})
	o.metrics.recordTransition(PhaseDestroy, err)
	return err
}
