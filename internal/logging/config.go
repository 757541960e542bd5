package logging

import (
	"os"
	"path/filepath"

	"github.com/cristianoliveira/area-links/internal/config"
)

// Config selects whether and how a run is logged. Command and PID end up in
// the file name and in every entry.
type Config struct {
	Enabled  bool
	Level    string
	MaxFiles int
	Command  string
	PID      int
}

// FromGlobalConfig builds a Config from the logging_* keys. The debug key
// lowers the level to debug; quiet, unless debug is on, raises it to error.
func FromGlobalConfig() Config {
	cfg := Config{
		Enabled:  config.GetBool("logging_enabled", false),
		Level:    config.Get("logging_level", "info"),
		MaxFiles: config.GetInt("logging_max_files", 10),
		Command:  filepath.Base(os.Args[0]),
		PID:      os.Getpid(),
	}
	if config.GetBool("debug", false) {
		cfg.Level = "debug"
	} else if config.GetBool("quiet", false) {
		cfg.Level = "error"
	}
	return cfg
}

// LogDir returns state_dir/logs, or area-links/logs under the temp dir when
// the state directory cannot be written.
func LogDir() (string, error) {
	if state := config.Get("state_dir", ""); state != "" {
		dir := filepath.Join(state, "logs")
		if writable(dir) {
			return dir, nil
		}
	}
	dir := filepath.Join(os.TempDir(), config.AppName, "logs")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// writable creates dir if needed and probes it with a scratch file.
func writable(dir string) bool {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
