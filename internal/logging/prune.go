package logging

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// prune deletes the oldest area-links log files in dir until at most keep
// remain. A negative keep disables pruning. Other files are never touched.
func prune(dir string, keep int) error {
	if keep < 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type logEntry struct {
		path string
		mod  time.Time
	}
	var logs []logEntry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logEntry{path: filepath.Join(dir, name), mod: info.ModTime()})
	}
	if len(logs) <= keep {
		return nil
	}

	slices.SortFunc(logs, func(a, b logEntry) int {
		if c := a.mod.Compare(b.mod); c != 0 {
			return c
		}
		return strings.Compare(a.path, b.path)
	})
	for _, l := range logs[:len(logs)-keep] {
		_ = os.Remove(l.path)
	}
	return nil
}
