package hook

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// resources holds values hooks share with each other and with the server,
// e.g. the database hook provides "database" for later groups to use.
type resources struct {
	items cmap.ConcurrentMap[string, any]
}

func newResources() *resources {
	return &resources{items: cmap.New[any]()}
}

// Provide stores v under key, replacing any previous value.
func (o *Orchestrator) Provide(key string, v any) {
	o.resources.items.Set(key, v)
}

// Withdraw removes key. Hooks call it from Destroy.
func (o *Orchestrator) Withdraw(key string) {
	o.resources.items.Remove(key)
}

// Resource returns the value stored under key.
func (o *Orchestrator) Resource(key string) (any, bool) {
	return o.resources.items.Get(key)
}

// ResourceKeys returns the keys currently provided.
func (o *Orchestrator) ResourceKeys() []string {
	return o.resources.items.Keys()
}

// Lookup returns the resource stored under key as a T.
func Lookup[T any](o *Orchestrator, key string) (T, error) {
	var zero T
	v, ok := o.Resource(key)
	if !ok {
		return zero, fmt.Errorf("resource %q not provided", key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("resource %q is %T, not %T", key, v, zero)
	}
	return t, nil
}
