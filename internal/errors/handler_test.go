package errors

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/area-links/internal/clipboard"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOutput struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingOutput) add(kind string, msgs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.lines = append(r.lines, kind+": "+m)
	}
}

func (r *recordingOutput) Error(msgs ...string)   { r.add("error", msgs) }
func (r *recordingOutput) Warning(msgs ...string) { r.add("warning", msgs) }
func (r *recordingOutput) Info(msgs ...string)    { r.add("info", msgs) }
func (r *recordingOutput) Success(msgs ...string) { r.add("ok", msgs) }

func TestCLIHandlerRoutesBySeverity(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)

	h.Error("boom")
	h.Warning("careful")
	h.Info("fyi")
	h.Success("done")

	assert.Equal(t, []string{"error: boom", "warning: careful", "info: fyi", "ok: done"}, out.lines)
	require.NotNil(t, NewDefaultCLIHandler())
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want MessageType
	}{
		{name: "not selectable", err: fmt.Errorf("tab 3: %w", orchestrator.ErrNotSelectable), want: MessageTypeInfo},
		{name: "no listener", err: fmt.Errorf("send: %w", ports.ErrNoListener), want: MessageTypeWarning},
		{name: "missing tab", err: ports.ErrTabNotFound, want: MessageTypeWarning},
		{name: "no clipboard", err: clipboard.ErrUnavailable, want: MessageTypeWarning},
		{name: "other", err: fmt.Errorf("disk full"), want: MessageTypeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Severity(tt.err))
		})
	}
}

func TestReport(t *testing.T) {
	out := &recordingOutput{}
	h := NewCLIHandler(out)

	Report(h, nil)
	Report(h, orchestrator.ErrNotSelectable)
	Report(h, fmt.Errorf("open window: %w", fmt.Errorf("denied")))
	Report(nil, fmt.Errorf("ignored"))

	assert.Equal(t, []string{
		"info: " + orchestrator.ErrNotSelectable.Error(),
		"error: open window: denied",
	}, out.lines)
}

func TestTUIHandlerExpires(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var seen []Message
	h := NewTUIHandler(func(m Message) { seen = append(seen, m) })
	h.SetClock(func() time.Time { return now })

	_, ok := h.Current()
	assert.False(t, ok)

	h.Warning("copy failed")
	msg, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "copy failed", msg.Text)
	assert.Equal(t, MessageTypeWarning, msg.Type)
	require.Len(t, seen, 1)

	now = now.Add(DefaultStatusTTL)
	_, ok = h.Current()
	assert.False(t, ok)

	h.SetTTL(0)
	h.Success("opened 2 links")
	now = now.Add(time.Hour)
	msg, ok = h.Current()
	require.True(t, ok)
	assert.Equal(t, "opened 2 links", msg.Text)

	h.Clear()
	_, ok = h.Current()
	assert.False(t, ok)
}

func TestTUIHandlerConcurrentAccess(t *testing.T) {
	h := NewTUIHandler(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Info(fmt.Sprintf("msg %d", i))
			_, _ = h.Current()
		}(i)
	}
	wg.Wait()
	_, ok := h.Current()
	assert.True(t, ok)
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "error", MessageTypeError.String())
	assert.Equal(t, "warning", MessageTypeWarning.String())
	assert.Equal(t, "info", MessageTypeInfo.String())
	assert.Equal(t, "ok", MessageTypeSuccess.String())
}
