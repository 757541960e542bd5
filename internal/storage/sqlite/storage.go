// Package sqlite provides a SQLite-backed history store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/area-links/internal/history"
	_ "modernc.org/sqlite"
)

var (
	// ErrInvalidKind indicates a history list name outside history.Kind.
	ErrInvalidKind = errors.New("invalid history list")
	// ErrEmptyPath indicates a missing database path.
	ErrEmptyPath = errors.New("db path cannot be empty")
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS history (
	kind     TEXT    NOT NULL,
	position INTEGER NOT NULL,
	url      TEXT    NOT NULL,
	PRIMARY KEY (kind, position)
);
CREATE UNIQUE INDEX IF NOT EXISTS history_kind_url ON history (kind, url);
`

// HistoryStorage persists the history lists. Each list is stored newest
// first, position 0 being the most recent URL.
type HistoryStorage struct {
	db    *sql.DB
	limit int
}

// NewHistoryStorage opens or creates the database at dbPath.
func NewHistoryStorage(dbPath string) (*HistoryStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite storage: %w", ErrEmptyPath)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}
	// One connection keeps the busy_timeout pragma in effect for every query.
	db.SetMaxOpenConns(1)

	storage := &HistoryStorage{db: db, limit: history.Limit}
	if err := storage.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return storage, nil
}

// Close closes the underlying SQLite connection.
func (s *HistoryStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *HistoryStorage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}

	return nil
}

// Load returns the list newest first.
func (s *HistoryStorage) Load(ctx context.Context, kind history.Kind) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("sqlite storage: load %q: %w", kind, ErrInvalidKind)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT url FROM history WHERE kind = ? ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: load %s: %w", kind, err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan %s: %w", kind, err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: load %s: %w", kind, err)
	}
	return urls, nil
}

// Save replaces the list in one transaction. Duplicates keep their first
// position and the list is truncated to history.Limit.
func (s *HistoryStorage) Save(ctx context.Context, kind history.Kind, urls []string) error {
	if !kind.Valid() {
		return fmt.Errorf("sqlite storage: save %q: %w", kind, ErrInvalidKind)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.replace(ctx, tx, kind, urls)
	})
}

func (s *HistoryStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite storage: begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite storage: commit transaction: %w", err)
	}
	return nil
}

func (s *HistoryStorage) replace(ctx context.Context, tx *sql.Tx, kind history.Kind, urls []string) error {
	urls = history.Merge(urls, nil, s.limit)
	if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("sqlite storage: clear %s: %w", kind, err)
	}
	for i, u := range urls {
		if _, err := tx.ExecContext(ctx, `INSERT INTO history (kind, position, url) VALUES (?, ?, ?)`, string(kind), i, u); err != nil {
			return fmt.Errorf("sqlite storage: insert %s[%d]: %w", kind, i, err)
		}
	}
	return nil
}

// Clear empties the list.
func (s *HistoryStorage) Clear(ctx context.Context, kind history.Kind) error {
	return s.Save(ctx, kind, nil)
}

// Count returns the number of stored entries of the list.
func (s *HistoryStorage) Count(ctx context.Context, kind history.Kind) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("sqlite storage: count %q: %w", kind, ErrInvalidKind)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history WHERE kind = ?`, string(kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite storage: count %s: %w", kind, err)
	}
	return n, nil
}
