// Package colors prints user-facing console messages.
//
// Errors, warnings and debug lines go to stderr; info and success lines go
// to stdout unless quiet. Every message is also mirrored into the structured
// logger when one is set.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// ANSI sequences used by console messages and the help screen.
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

const checkmark = "✓"

// Logger receives a copy of every console message.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled atomic.Bool
	quiet        atomic.Bool

	mu     sync.RWMutex
	logger Logger
	// stdout and stderr replace the process streams when set.
	stdout, stderr io.Writer
)

func init() {
	switch os.Getenv("AREA_LINKS_DEBUG") {
	case "1", "true":
		debugEnabled.Store(true)
	}
}

// SetDebug turns debug lines and JSON traces on or off.
func SetDebug(enabled bool) { debugEnabled.Store(enabled) }

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool { return debugEnabled.Load() }

// SetQuiet hides info and success lines. Errors and warnings still print.
func SetQuiet(enabled bool) { quiet.Store(enabled) }

// SetLogger sets the logger console messages are mirrored to. Nil stops
// mirroring.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetOutput redirects console messages. Nil writers restore the process
// streams.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stdout, stderr = out, errOut
}

func streams() (Logger, io.Writer, io.Writer) {
	mu.RLock()
	defer mu.RUnlock()
	out, errOut := stdout, stderr
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return logger, out, errOut
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelSuccess
	levelWarn
	levelError
)

// emit mirrors msg to the logger and writes it to its stream. When the
// write fails the message is retried uncolored on the process stderr.
func emit(lvl level, toStderr bool, format string, msgs []string) {
	msg := strings.Join(msgs, " ")
	l, out, errOut := streams()
	if l != nil {
		switch lvl {
		case levelDebug:
			l.Debug(msg)
		case levelInfo:
			l.Info(msg)
		case levelSuccess:
			l.Info(msg, "type", "success")
		case levelWarn:
			l.Warn(msg)
		case levelError:
			l.Error(msg)
		}
	}
	if (lvl == levelInfo || lvl == levelSuccess) && quiet.Load() {
		return
	}

	w := out
	if toStderr {
		w = errOut
	}
	if _, err := fmt.Fprintf(w, format, msg); err != nil {
		fmt.Fprintf(os.Stderr, "%s (console write failed: %v)\n", msg, err)
	}
}

// Error prints an error message to stderr.
func Error(msgs ...string) {
	emit(levelError, true, Red+"Error:"+Reset+" %s\n", msgs)
}

// Success prints a confirmation to stdout.
func Success(msgs ...string) {
	emit(levelSuccess, false, Green+checkmark+Reset+" %s\n", msgs)
}

// Warning prints a warning to stderr.
func Warning(msgs ...string) {
	emit(levelWarn, true, Yellow+"Warning:"+Reset+" %s\n", msgs)
}

// Info prints an informational message to stdout.
func Info(msgs ...string) {
	emit(levelInfo, false, Blue+"%s"+Reset+"\n", msgs)
}

// LogInfo prints an informational message to stderr, keeping stdout for
// command output.
func LogInfo(msgs ...string) {
	emit(levelInfo, true, Blue+"%s"+Reset+"\n", msgs)
}

// Debug prints a debug message to stderr when debug is on.
func Debug(msgs ...string) {
	if !debugEnabled.Load() {
		return
	}
	emit(levelDebug, true, Cyan+"Debug:"+Reset+" %s\n", msgs)
}
