package hook

import (
	"context"

	"yqhp/hookserver/common/config"
)

// Hook is the one required capability: Init is called once per init cycle.
type Hook interface {
	Init(ctx context.Context, o *Orchestrator) error
}

// Destroyer is implemented by hooks that hold resources to release on shutdown.
type Destroyer interface {
	Destroy(ctx context.Context, o *Orchestrator) error
}

// Reinitializer is implemented by hooks that can rebuild their resources after
// a Destroy without being reconstructed.
type Reinitializer interface {
	Reinitialize(ctx context.Context, o *Orchestrator) error
}

// InfoProvider is implemented by hooks that contribute to the public status.
type InfoProvider interface {
	Info(ctx context.Context, o *Orchestrator) (map[string]any, error)
}

// Switchable lets a hook opt out of every transition. Hooks that do not
// implement it are enabled.
type Switchable interface {
	Enabled() bool
}

// Factory builds a hook from the shared configuration. The returned value must
// implement Hook; anything else is dropped at registration.
type Factory func(cfg *config.Config) (any, error)

// Candidates maps hook names to either a ready hook value or a Factory.
type Candidates map[string]any

// State is the orchestrator lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDestroying
	StateReinitializing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDestroying:
		return "destroying"
	case StateReinitializing:
		return "reinitializing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Phase identifies which hook method a call belongs to.
type Phase string

const (
	PhaseRegister     Phase = "register"
	PhaseInit         Phase = "init"
	PhaseDestroy      Phase = "destroy"
	PhaseReinitialize Phase = "reinitialize"
	PhaseInfo         Phase = "info"
)
