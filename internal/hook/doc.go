// Package hook drives independently authored initialization units ("hooks")
// through an ordered startup, shutdown and reinitialize protocol.
//
// A hook is registered under a name such as "05-database". The text before the
// first '-' is its group key. Groups run in lexicographic order of their keys,
// ascending on init and reinitialize and descending on destroy; the hooks of one
// group run concurrently and the whole group settles before the next one starts.
// Zero-padded numeric prefixes ("00", "05", "10") therefore give numeric order.
//
// Transitions:
//   - InitHooks: register candidates, then Init every hook group by group.
//   - KillHooks: Destroy every hook that implements Destroyer, in reverse order.
//   - ResetHooks: Destroy in reverse order, then Reinitialize in forward order,
//     reusing the registered hook instances.
//   - PublicInfo: merge the Info of every InfoProvider into one map.
//
// The first error returned by a hook aborts the transition and is returned to
// the caller unchanged. Hooks that already completed are not rolled back; the
// orchestrator moves to StateFailed, from which KillHooks destroys exactly the
// hooks whose Init had succeeded.
package hook
