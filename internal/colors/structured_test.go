package colors

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIsGatedByDebugMode(t *testing.T) {
	EnableStructuredLogging()
	SetDebug(false)
	defer SetDebug(false)

	out := capture(t, &os.Stderr, func() {
		Trace(Event{Component: "orchestrator", Action: "trigger"})
	})
	assert.Empty(t, out)

	SetDebug(true)
	out = capture(t, &os.Stderr, func() {
		Trace(Event{Component: "orchestrator", Action: "trigger", TabID: 3})
	})

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &ev))
	assert.Equal(t, LevelDebug, ev.Level)
	assert.Equal(t, "trigger", ev.Action)
	assert.Equal(t, 3, ev.TabID)
	assert.NotEmpty(t, ev.Timestamp)
}

func TestTraceCanBeDisabled(t *testing.T) {
	SetDebug(true)
	defer SetDebug(false)
	DisableStructuredLogging()
	defer EnableStructuredLogging()

	out := capture(t, &os.Stderr, func() {
		TraceError("browser", "inject", 1, errors.New("boom"))
	})
	assert.Empty(t, out)
}

func TestTraceError(t *testing.T) {
	SetDebug(true)
	defer SetDebug(false)

	out := capture(t, &os.Stderr, func() {
		TraceError("browser", "inject", 1, errors.New("boom"))
	})
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"error":"boom"`)
}
