package hook

import (
	"sort"
	"strings"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/duke-git/lancet/v2/slice"
)

// Order is the direction groups are visited in.
type Order int

const (
	// Ascending is used by init and reinitialize.
	Ascending Order = iota
	// Descending is used by destroy.
	Descending
)

// Group is a set of hooks sharing one group key.
type Group struct {
	Key   string
	Names []string
}

// GroupKey returns the text before the first '-' of name, or the whole name
// when it has no '-'.
func GroupKey(name string) string {
	if i := strings.IndexByte(name, '-'); i >= 0 {
		return name[:i]
	}
	return name
}

// GroupNames partitions names by GroupKey and returns the groups sorted by key in
// the given order. Names inside a group are sorted ascending.
func GroupNames(names []string, order Order) []Group {
	if len(names) == 0 {
		return nil
	}

	byKey := slice.GroupWith(names, GroupKey)
	keys := maputil.Keys(byKey)
	sort.Strings(keys)
	if order == Descending {
		slice.Reverse(keys)
	}

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		members := append([]string(nil), byKey[key]...)
		sort.Strings(members)
		groups = append(groups, Group{Key: key, Names: members})
	}
	return groups
}
