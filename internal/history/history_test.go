package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urls(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://%s.test/%d", prefix, i)
	}
	return out
}

func TestMergeEvictsOldestAtCapacity(t *testing.T) {
	full := urls("old", Limit)

	merged := Merge([]string{"https://new.test/"}, full, Limit)

	require.Len(t, merged, Limit)
	assert.Equal(t, "https://new.test/", merged[0])
	assert.Equal(t, full[:Limit-1], merged[1:])
	assert.NotContains(t, merged, full[Limit-1])
}

func TestMergeDedupsAndKeepsNewestFirst(t *testing.T) {
	existing := []string{"b", "c", "d"}

	merged := Merge([]string{"a", "c", "a"}, existing, Limit)

	assert.Equal(t, []string{"a", "c", "b", "d"}, merged)
}

func TestMergeBoundHoldsOverManyCommits(t *testing.T) {
	var list []string
	for i := 0; i < 40; i++ {
		list = Merge(urls(fmt.Sprint("batch", i%7), 9), list, Limit)

		require.LessOrEqual(t, len(list), Limit)
		seen := map[string]bool{}
		for _, u := range list {
			require.False(t, seen[u], "duplicate %s", u)
			seen[u] = true
		}
	}
}

func TestMergeDefaultLimit(t *testing.T) {
	assert.Len(t, Merge(urls("x", 80), nil, 0), Limit)
	assert.Empty(t, Merge(nil, nil, Limit))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("links")
	require.NoError(t, err)
	assert.Equal(t, KindLinks, k)

	k, err = ParseKind("copyHistory")
	require.NoError(t, err)
	assert.Equal(t, KindCopies, k)

	_, err = ParseKind("bookmarks")
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, KindLinks, []string{"a", "b"}))
	got, err := s.Load(ctx, KindLinks)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got[0] = "mutated"
	again, _ := s.Load(ctx, KindLinks)
	assert.Equal(t, "a", again[0], "Load returns a copy")

	copies, err := s.Load(ctx, KindCopies)
	require.NoError(t, err)
	assert.Empty(t, copies)

	require.NoError(t, s.Clear(ctx, KindLinks))
	got, _ = s.Load(ctx, KindLinks)
	assert.Empty(t, got)

	require.Error(t, s.Save(ctx, Kind("bogus"), nil))
}
