// Package history manages the bounded recency lists of opened and copied links.
package history

import (
	"context"
	"fmt"
	"sync"
)

// Limit is the capacity of each history list.
const Limit = 50

// Kind names one of the two independent history lists.
type Kind string

const (
	// KindLinks is the list of links opened from a selection.
	KindLinks Kind = "linkHistory"
	// KindCopies is the list of links copied from a selection.
	KindCopies Kind = "copyHistory"
)

// Valid reports whether k is a known list.
func (k Kind) Valid() bool {
	return k == KindLinks || k == KindCopies
}

// ParseKind accepts the wire names and the short forms "links"/"copies".
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindLinks), "links", "opened":
		return KindLinks, nil
	case string(KindCopies), "copies", "copied":
		return KindCopies, nil
	default:
		return "", fmt.Errorf("unknown history list %q", s)
	}
}

// Merge puts fresh in front of existing, keeps the first occurrence of every
// URL and truncates to limit. The result is newest first with no duplicates.
// A non-positive limit means Limit.
func Merge(fresh, existing []string, limit int) []string {
	if limit <= 0 {
		limit = Limit
	}
	seen := make(map[string]struct{}, len(fresh)+len(existing))
	out := make([]string, 0, min(limit, len(fresh)+len(existing)))
	for _, list := range [][]string{fresh, existing} {
		for _, u := range list {
			if len(out) == limit {
				return out
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

// MemoryStore keeps history lists in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[Kind][]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[Kind][]string)}
}

// Load returns a copy of the list.
func (s *MemoryStore) Load(_ context.Context, kind Kind) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("history: load: unknown list %q", kind)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lists[kind]...), nil
}

// Save replaces the list.
func (s *MemoryStore) Save(_ context.Context, kind Kind, urls []string) error {
	if !kind.Valid() {
		return fmt.Errorf("history: save: unknown list %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[kind] = append([]string(nil), urls...)
	return nil
}

// Clear empties the list.
func (s *MemoryStore) Clear(ctx context.Context, kind Kind) error {
	return s.Save(ctx, kind, nil)
}
