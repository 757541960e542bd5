package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/cristianoliveira/area-links/internal/orchestrator"
)

// MenuEntry is one item of the page context menu.
type MenuEntry struct {
	ID    string
	Title string
}

// Menu holds the selection entries of the page context menu.
type Menu struct {
	mu        sync.RWMutex
	entries   []MenuEntry
	shortcuts map[string]string
}

// NewMenu returns an empty menu. shortcuts maps command names to the key
// shown next to their entry.
func NewMenu(shortcuts map[string]string) *Menu {
	return &Menu{shortcuts: shortcuts}
}

// Refresh rebuilds the entries, leaving the menu empty when show is false.
func (m *Menu) Refresh(_ context.Context, show bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	if !show {
		return nil
	}
	m.entries = []MenuEntry{
		{ID: orchestrator.MenuActivate, Title: m.title("Select links to open", orchestrator.CommandActivate)},
		{ID: orchestrator.MenuActivateCopy, Title: m.title("Select links to copy", orchestrator.CommandActivateCopy)},
	}
	return nil
}

func (m *Menu) title(label, command string) string {
	if key := m.shortcuts[command]; key != "" {
		return fmt.Sprintf("%s (%s)", label, key)
	}
	return label
}

// Entries returns the current entries.
func (m *Menu) Entries() []MenuEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]MenuEntry(nil), m.entries...)
}
