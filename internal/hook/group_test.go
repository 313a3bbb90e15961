package hook

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"05-database", "05"},
		{"10-storage-s3", "10"},
		{"-leading", ""},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GroupKey(tt.name))
		})
	}
}

func TestGroupNames_Order(t *testing.T) {
	names := []string{"10-d", "00-b", "05-c", "00-a"}

	asc := GroupNames(names, Ascending)
	require.Len(t, asc, 3)
	assert.Equal(t, Group{Key: "00", Names: []string{"00-a", "00-b"}}, asc[0])
	assert.Equal(t, Group{Key: "05", Names: []string{"05-c"}}, asc[1])
	assert.Equal(t, Group{Key: "10", Names: []string{"10-d"}}, asc[2])

	desc := GroupNames(names, Descending)
	require.Len(t, desc, 3)
	assert.Equal(t, "10", desc[0].Key)
	assert.Equal(t, "05", desc[1].Key)
	assert.Equal(t, []string{"00-a", "00-b"}, desc[2].Names)

	// input is left untouched
	assert.Equal(t, []string{"10-d", "00-b", "05-c", "00-a"}, names)
}

func TestGroupNames_Lexicographic(t *testing.T) {
	groups := GroupNames([]string{"9-late", "10-early"}, Ascending)
	require.Len(t, groups, 2)
	// keys compare as strings, so zero padding is required for numeric order
	assert.Equal(t, "10", groups[0].Key)
	assert.Equal(t, "9", groups[1].Key)
}

func TestGroupNames_Empty(t *testing.T) {
	assert.Empty(t, GroupNames(nil, Ascending))
}

// TestProperty_GroupingDeterminism checks that every name lands in the group of
// its prefix, that keys are strictly ordered, and that no name is lost.
func TestProperty_GroupingDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfDistinct(
			rapid.StringMatching(`[0-9]{2}-[a-z]{1,6}|[a-z]{1,4}`),
			func(s string) string { return s },
		).Draw(t, "names")
		descending := rapid.Bool().Draw(t, "descending")
		order := Ascending
		if descending {
			order = Descending
		}

		groups := GroupNames(names, order)

		var seen []string
		for i, g := range groups {
			for _, n := range g.Names {
				if GroupKey(n) != g.Key {
					t.Fatalf("name %q in group %q", n, g.Key)
				}
				if !strings.HasPrefix(n, g.Key) {
					t.Fatalf("name %q does not start with %q", n, g.Key)
				}
			}
			if !sort.StringsAreSorted(g.Names) {
				t.Fatalf("group %q names not sorted: %v", g.Key, g.Names)
			}
			if i > 0 {
				prev := groups[i-1].Key
				if order == Ascending && prev >= g.Key {
					t.Fatalf("keys not ascending: %q then %q", prev, g.Key)
				}
				if order == Descending && prev <= g.Key {
					t.Fatalf("keys not descending: %q then %q", prev, g.Key)
				}
			}
			seen = append(seen, g.Names...)
		}

		want := append([]string(nil), names...)
		sort.Strings(want)
		sort.Strings(seen)
		if len(want) != len(seen) {
			t.Fatalf("got %d names, want %d", len(seen), len(want))
		}
		for i := range want {
			if want[i] != seen[i] {
				t.Fatalf("name mismatch: %q vs %q", want[i], seen[i])
			}
		}
	})
}
