package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/cristianoliveira/area-links/internal/history"
)

// ImportOptions configures an import of exported extension storage.
type ImportOptions struct {
	// Path is a JSON file holding "linkHistory" and "copyHistory" arrays.
	Path   string
	DryRun bool
}

// ImportStats summarizes an import run.
type ImportStats struct {
	TotalRows    int
	ImportedRows int
	SkippedRows  int
	Warnings     []string
}

type exportFile struct {
	LinkHistory []string `json:"linkHistory"`
	CopyHistory []string `json:"copyHistory"`
}

// Import merges exported history lists behind the stored ones. Stored
// entries are newer and keep their place; imported entries fill the
// remaining capacity. Entries that are not absolute http(s) URLs are skipped
// with a warning. Both lists are written in one transaction.
func (s *HistoryStorage) Import(ctx context.Context, opts ImportOptions) (ImportStats, error) {
	stats := ImportStats{}

	if strings.TrimSpace(opts.Path) == "" {
		return stats, fmt.Errorf("import: path cannot be empty")
	}
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return stats, fmt.Errorf("import: read %s: %w", opts.Path, err)
	}
	var export exportFile
	if err := json.Unmarshal(data, &export); err != nil {
		return stats, fmt.Errorf("import: parse %s: %w", opts.Path, err)
	}

	lists := map[history.Kind][]string{
		history.KindLinks:  export.LinkHistory,
		history.KindCopies: export.CopyHistory,
	}
	merged := make(map[history.Kind][]string, len(lists))
	for _, kind := range []history.Kind{history.KindLinks, history.KindCopies} {
		valid := make([]string, 0, len(lists[kind]))
		for i, raw := range lists[kind] {
			stats.TotalRows++
			if !importable(raw) {
				stats.SkippedRows++
				stats.Warnings = append(stats.Warnings, fmt.Sprintf("%s[%d]: not an absolute http(s) URL: %q", kind, i, raw))
				continue
			}
			valid = append(valid, raw)
		}

		existing, err := s.Load(ctx, kind)
		if err != nil {
			return stats, fmt.Errorf("import: %w", err)
		}
		merged[kind] = history.Merge(existing, valid, s.limit)
		stats.ImportedRows += len(merged[kind]) - len(existing)
	}

	if opts.DryRun {
		return stats, nil
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		for kind, urls := range merged {
			if err := s.replace(ctx, tx, kind, urls); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("import: %w", err)
	}
	return stats, nil
}

func importable(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
