package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cristianoliveira/area-links/internal/config"
	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, env map[string]string) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	stateDir := filepath.Join(tmp, "state")
	t.Setenv("AREA_LINKS_STATE_DIR", stateDir)
	for k, v := range env {
		t.Setenv(k, v)
	}
	config.Load()
	return stateDir
}

func TestNewFromConfigSelectsSQLiteByDefault(t *testing.T) {
	stateDir := loadConfig(t, nil)

	store, err := NewFromConfig()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	require.IsType(t, &sqlite.HistoryStorage{}, store)
	require.FileExists(t, filepath.Join(stateDir, "history.db"))
}

func TestNewFromConfigSelectsMemory(t *testing.T) {
	loadConfig(t, map[string]string{"AREA_LINKS_HISTORY_BACKEND": "memory"})

	store, err := NewFromConfig()
	require.NoError(t, err)
	require.IsType(t, memoryStore{}, store)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, history.KindLinks, []string{"https://a.test/"}))
	require.NoError(t, store.Clear(ctx, history.KindLinks))
	got, err := store.Load(ctx, history.KindLinks)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, store.Close())
}

func TestNewForBackendUnknownFallsBackToSQLite(t *testing.T) {
	loadConfig(t, nil)

	store, err := NewForBackend("postgres")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.IsType(t, &sqlite.HistoryStorage{}, store)
}

func TestNewForBackendUnwritableStateDirUsesMemory(t *testing.T) {
	loadConfig(t, map[string]string{"AREA_LINKS_STATE_DIR": "/dev/null/state"})

	store, err := NewForBackend(BackendSQLite)
	require.NoError(t, err)
	require.IsType(t, memoryStore{}, store)
}
