package hook

import (
	"fmt"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"yqhp/hookserver/common/config"
)

// entry 是一个已注册的钩子及其在注册时确定的能力。
type entry struct {
	name      string
	group     string
	hook      Hook
	destroyer Destroyer
	reinit    Reinitializer
	info      InfoProvider

	// ready is set once Init (or Reinitialize) succeeded and cleared once
	// Destroy ran.
	ready atomic.Bool
}

// Registry 是经过校验和构造后的钩子集合，在一个生命周期内保持不变。
type Registry struct {
	entries map[string]*entry
	names   []string
}

// Capabilities describes which optional interfaces a registered hook implements.
type Capabilities struct {
	Destroy      bool
	Reinitialize bool
	Info         bool
}

// Register 根据候选集合构建注册表。
//
// Candidates are visited in sorted name order. A Factory (or a bare factory
// func) is called with cfg; its error or panic aborts registration. Values that do not
// implement Hook are dropped with a warning, as are hooks reporting
// Enabled() == false and names listed in hooks.disabled.
func Register(cfg *config.Config, candidates Candidates, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	r := &Registry{entries: make(map[string]*entry, len(candidates))}
	for _, name := range names {
		if cfg.IsHookDisabled(name) {
			log.Info("hook disabled by config", zap.String("hook", name))
			continue
		}

		value, err := construct(cfg, name, candidates[name])
		if err != nil {
			return nil, NewRegisterError(name, err)
		}

		h, ok := value.(Hook)
		if !ok {
			log.Warn("skipping malformed hook: no Init method",
				zap.String("hook", name), zap.String("type", fmt.Sprintf("%T", value)))
			continue
		}

		if sw, ok := h.(Switchable); ok && !sw.Enabled() {
			log.Info("hook disabled", zap.String("hook", name))
			continue
		}

		e := &entry{name: name, group: GroupKey(name), hook: h}
		e.destroyer, _ = h.(Destroyer)
		e.reinit, _ = h.(Reinitializer)
		e.info, _ = h.(InfoProvider)

		r.entries[name] = e
		r.names = append(r.names, name)
		log.Debug("hook registered", zap.String("hook", name), zap.String("group", e.group))
	}
	return r, nil
}

// construct runs a factory source and turns its panic into an error. A nil
// factory yields a nil value, which Register drops as malformed.
func construct(cfg *config.Config, name string, source any) (value any, err error) {
	var build func(*config.Config) (any, error)
	switch f := source.(type) {
	case Factory:
		build = f
	case func(*config.Config) (any, error):
		build = f
	default:
		return source, nil
	}
	if build == nil {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = NewPanicError(name, PhaseRegister, r)
		}
	}()
	return build(cfg)
}

// Names returns the registered hook names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Lookup returns the registered hook instance for name.
func (r *Registry) Lookup(name string) (Hook, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.hook, true
}

// Capabilities returns the optional capabilities detected for name.
func (r *Registry) Capabilities(name string) (Capabilities, bool) {
	if r == nil {
		return Capabilities{}, false
	}
	e, ok := r.entries[name]
	if !ok {
		return Capabilities{}, false
	}
	return Capabilities{
		Destroy:      e.destroyer != nil,
		Reinitialize: e.reinit != nil,
		Info:         e.info != nil,
	}, true
}

// Groups returns the registered hooks partitioned into ordered groups.
func (r *Registry) Groups(order Order) []Group {
	if r == nil {
		return nil
	}
	return GroupNames(r.names, order)
}

func (r *Registry) entry(name string) *entry {
	return r.entries[name]
}
