// Package storage selects the history store backend.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/cristianoliveira/area-links/internal/config"
	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/storage/sqlite"
)

const (
	// BackendSQLite selects the SQLite history store.
	BackendSQLite = "sqlite"
	// BackendMemory keeps history for the lifetime of the process only.
	BackendMemory = "memory"

	historyDBFileName = "history.db"
)

// Store persists the history lists.
type Store interface {
	Load(ctx context.Context, kind history.Kind) ([]string, error)
	Save(ctx context.Context, kind history.Kind, urls []string) error
	Clear(ctx context.Context, kind history.Kind) error
	Close() error
}

// memoryStore adapts history.MemoryStore to Store.
type memoryStore struct {
	*history.MemoryStore
}

func (memoryStore) Close() error { return nil }

// NewMemory returns an in-process store.
func NewMemory() Store {
	return memoryStore{history.NewMemoryStore()}
}

var _ Store = (*sqlite.HistoryStorage)(nil)

// NewFromConfig creates the store named by history_backend.
func NewFromConfig() (Store, error) {
	return NewForBackend(config.Get("history_backend", BackendSQLite))
}

// NewForBackend creates a store for the backend name. A SQLite store that
// cannot be opened falls back to memory with a warning.
func NewForBackend(backend string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		dbPath, err := DBPath()
		if err != nil {
			colors.Warning(fmt.Sprintf("history will not persist: %v", err))
			return NewMemory(), nil
		}
		s, err := sqlite.NewHistoryStorage(dbPath)
		if err != nil {
			colors.Warning(fmt.Sprintf("failed to initialize sqlite history, using memory: %v", err))
			return NewMemory(), nil
		}
		return s, nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		colors.Warning(fmt.Sprintf("unknown history backend '%s', falling back to sqlite", backend))
		return NewForBackend(BackendSQLite)
	}
}

// DBPath returns the history database path under state_dir, creating the
// directory.
func DBPath() (string, error) {
	stateDir := config.Get("state_dir", "")
	if stateDir == "" {
		return "", fmt.Errorf("state_dir not configured")
	}
	if err := os.MkdirAll(stateDir, config.FileModeDir); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return filepath.Join(stateDir, historyDBFileName), nil
}
