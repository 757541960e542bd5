package colors

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	structuredMu             sync.Mutex
	structuredLoggingEnabled atomic.Bool
)

func init() {
	structuredLoggingEnabled.Store(true)
}

// StructuredLogLevel represents log level for structured logs.
type StructuredLogLevel string

const (
	LevelDebug StructuredLogLevel = "debug"
	LevelInfo  StructuredLogLevel = "info"
	LevelWarn  StructuredLogLevel = "warn"
	LevelError StructuredLogLevel = "error"
)

// Event is one JSON trace line of a selection session.
type Event struct {
	Timestamp string             `json:"timestamp"`
	Level     StructuredLogLevel `json:"level"`
	Component string             `json:"component"`
	Action    string             `json:"action"`
	TabID     int                `json:"tab_id,omitempty"`
	Error     string             `json:"error,omitempty"`
	Fields    map[string]any     `json:"fields,omitempty"`
}

// DisableStructuredLogging turns trace lines off. The TUI does this because
// stderr output corrupts the alternate screen.
func DisableStructuredLogging() {
	structuredLoggingEnabled.Store(false)
}

// EnableStructuredLogging turns trace lines back on.
func EnableStructuredLogging() {
	structuredLoggingEnabled.Store(true)
}

// Trace writes ev as a JSON line to stderr when debug is on.
func Trace(ev Event) {
	if !debugEnabled.Load() || !structuredLoggingEnabled.Load() {
		return
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if ev.Level == "" {
		ev.Level = LevelDebug
	}

	data, err := json.Marshal(ev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace %s/%s dropped: %v\n", ev.Component, ev.Action, err)
		return
	}

	_, _, errOut := streams()
	structuredMu.Lock()
	defer structuredMu.Unlock()
	_, _ = fmt.Fprintf(errOut, "%s\n", data)
}

// TraceError records a failed action.
func TraceError(component, action string, tabID int, err error) {
	ev := Event{Level: LevelError, Component: component, Action: action, TabID: tabID}
	if err != nil {
		ev.Error = err.Error()
	}
	Trace(ev)
}
