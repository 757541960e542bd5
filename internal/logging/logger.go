// Package logging writes structured JSON logs to one file per run.
//
// Every component takes a Logger; when logging_enabled is off it is a noop.
// Values are passed through a redactor, so selected links can be logged
// without leaking credentials in their query strings.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/google/uuid"
)

// Logger is the structured logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that adds the key-value pairs to every entry.
	With(args ...any) Logger
	// Shutdown closes the log file. Loggers derived with With share it.
	Shutdown() error
}

// filePrefix starts every log file name; pruning only touches matching files.
const filePrefix = "area-links_"

// logFile is the file shared by a logger and everything derived from it.
type logFile struct {
	f    *os.File
	path string

	once sync.Once
	err  error
}

func (lf *logFile) close() error {
	lf.once.Do(func() { lf.err = lf.f.Close() })
	return lf.err
}

type fileLogger struct {
	base   *clog.Logger
	sink   *logFile
	redact *redactor
}

// Init returns a logger for cfg. A disabled config gives a noop logger.
// Old files beyond cfg.MaxFiles are pruned before the new one is created.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	dir, err := LogDir()
	if err != nil {
		return nil, fmt.Errorf("resolve log directory: %w", err)
	}
	if err := prune(dir, cfg.MaxFiles-1); err != nil {
		fmt.Fprintf(os.Stderr, "log pruning failed: %v\n", err)
	}

	name := fmt.Sprintf("%s%s_%d_%s.log", filePrefix,
		time.Now().Format("20060102_150405"), cfg.PID,
		strings.ReplaceAll(cfg.Command, " ", "_"))
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	base := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
		Formatter:       clog.JSONFormatter,
	}).With("run", uuid.NewString(), "pid", cfg.PID, "command", cfg.Command)

	return &fileLogger{base: base, sink: &logFile{f: f, path: path}, redact: newRedactor()}, nil
}

// parseLevel maps a config level to a clog level. Unknown levels mean info.
func parseLevel(level string) clog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	l, err := clog.ParseLevel(level)
	if err != nil {
		return clog.InfoLevel
	}
	return l
}

func (l *fileLogger) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *fileLogger) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *fileLogger) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *fileLogger) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

func (l *fileLogger) log(level clog.Level, msg string, args []any) {
	l.base.Log(level, msg, l.redact.redact(args)...)
}

func (l *fileLogger) With(args ...any) Logger {
	return &fileLogger{base: l.base.With(l.redact.redact(args)...), sink: l.sink, redact: l.redact}
}

func (l *fileLogger) Shutdown() error {
	return l.sink.close()
}

type noopLogger struct{}

// NewNoop returns a logger that discards everything.
func NewNoop() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (n noopLogger) With(...any) Logger { return n }
func (noopLogger) Shutdown() error      { return nil }

var (
	globalMu sync.RWMutex
	global   Logger
)

// InitGlobal creates the process logger from the loaded configuration and
// mirrors console messages into it. Later calls keep the first logger until
// ShutdownGlobal.
func InitGlobal() error {
	globalMu.Lock()
	if global != nil {
		globalMu.Unlock()
		return nil
	}
	l, err := Init(FromGlobalConfig())
	if err != nil {
		globalMu.Unlock()
		return err
	}
	global = l
	globalMu.Unlock()

	colors.SetLogger(l)
	if path := CurrentLogFile(); path != "" {
		colors.Debug("logging to " + path)
	}
	return nil
}

// GetGlobal returns the process logger, or a noop logger before InitGlobal.
func GetGlobal() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return noopLogger{}
	}
	return global
}

// Debug logs through the process logger.
func Debug(msg string, args ...any) { GetGlobal().Debug(msg, args...) }

// Info logs through the process logger.
func Info(msg string, args ...any) { GetGlobal().Info(msg, args...) }

// Warn logs through the process logger.
func Warn(msg string, args ...any) { GetGlobal().Warn(msg, args...) }

// Error logs through the process logger.
func Error(msg string, args ...any) { GetGlobal().Error(msg, args...) }

// ShutdownGlobal closes the process logger. A later InitGlobal starts a new
// one.
func ShutdownGlobal() error {
	globalMu.Lock()
	l := global
	global = nil
	globalMu.Unlock()

	if l == nil {
		return nil
	}
	colors.SetLogger(nil)
	return l.Shutdown()
}

// CurrentLogFile returns the file the process logger writes to, or "" when
// logging is off.
func CurrentLogFile() string {
	if fl, ok := GetGlobal().(*fileLogger); ok {
		return fl.sink.path
	}
	return ""
}
