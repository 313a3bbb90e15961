package hook

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// recorder records lifecycle events in call order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// filter returns recorded hook names for one phase prefix, e.g. "init".
func (r *recorder) filter(prefix string) []string {
	var out []string
	for _, ev := range r.snapshot() {
		if name, ok := strings.CutPrefix(ev, prefix+":"); ok {
			out = append(out, name)
		}
	}
	return out
}

func indexOf(events []string, want string) int {
	for i, ev := range events {
		if ev == want {
			return i
		}
	}
	return -1
}

// initOnlyHook implements only Init.
type initOnlyHook struct {
	name    string
	rec     *recorder
	initErr error
	onInit  func(ctx context.Context, o *Orchestrator) error
	inits   atomic.Int32
}

func (h *initOnlyHook) Init(ctx context.Context, o *Orchestrator) error {
	h.inits.Add(1)
	if h.rec != nil {
		h.rec.record("init:" + h.name)
	}
	if h.onInit != nil {
		if err := h.onInit(ctx, o); err != nil {
			return err
		}
	}
	return h.initErr
}

// fullHook implements every optional capability.
type fullHook struct {
	initOnlyHook
	destroyErr error
	reinitErr  error
	info       map[string]any
	infoErr    error

	destroys atomic.Int32
	reinits  atomic.Int32
	infos    atomic.Int32
}

func newFull(name string, rec *recorder) *fullHook {
	return &fullHook{initOnlyHook: initOnlyHook{name: name, rec: rec}}
}

func (h *fullHook) Destroy(ctx context.Context, o *Orchestrator) error {
	h.destroys.Add(1)
	if h.rec != nil {
		h.rec.record("destroy:" + h.name)
	}
	return h.destroyErr
}

func (h *fullHook) Reinitialize(ctx context.Context, o *Orchestrator) error {
	h.reinits.Add(1)
	if h.rec != nil {
		h.rec.record("reinit:" + h.name)
	}
	return h.reinitErr
}

func (h *fullHook) Info(ctx context.Context, o *Orchestrator) (map[string]any, error) {
	h.infos.Add(1)
	return h.info, h.infoErr
}

// destroyOnlyHook has Init and Destroy but cannot be reinitialized.
type destroyOnlyHook struct {
	initOnlyHook
	destroys atomic.Int32
}

func (h *destroyOnlyHook) Destroy(ctx context.Context, o *Orchestrator) error {
	h.destroys.Add(1)
	if h.rec != nil {
		h.rec.record("destroy:" + h.name)
	}
	return nil
}

// switchHook is a fullHook that reports Enabled.
type switchHook struct {
	*fullHook
	enabled bool
}

func (h *switchHook) Enabled() bool { return h.enabled }
