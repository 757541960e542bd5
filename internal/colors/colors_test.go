package colors

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects the given process stream while fn runs.
func capture(t *testing.T, stream **os.File, fn func()) string {
	t.Helper()
	old := *stream
	r, w, err := os.Pipe()
	require.NoError(t, err)
	*stream = w
	defer func() { *stream = old }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

// buffers routes console output into two buffers for the test.
func buffers(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	SetOutput(out, errOut)
	t.Cleanup(func() { SetOutput(nil, nil) })
	return out, errOut
}

func TestConsoleOutput(t *testing.T) {
	tests := []struct {
		name     string
		print    func(...string)
		toStderr bool
		want     []string
	}{
		{"error", Error, true, []string{"Error:", Red}},
		{"success", Success, false, []string{"✓", Green}},
		{"warning", Warning, true, []string{"Warning:", Yellow}},
		{"info", Info, false, []string{Blue}},
		{"log info", LogInfo, true, []string{Blue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := buffers(t)
			tt.print("some", "message")

			got, other := out, errOut
			if tt.toStderr {
				got, other = errOut, out
			}
			assert.Empty(t, other.String())
			assert.Contains(t, got.String(), "some message")
			for _, w := range tt.want {
				assert.Contains(t, got.String(), w)
			}
		})
	}
}

func TestProcessStreamsAreResolvedPerCall(t *testing.T) {
	out := capture(t, &os.Stderr, func() { Warning("late stderr") })
	assert.Contains(t, out, "late stderr")
}

func TestDebugGated(t *testing.T) {
	_, errOut := buffers(t)
	SetDebug(false)
	Debug("hidden")
	assert.Empty(t, errOut.String())
	assert.False(t, DebugEnabled())

	SetDebug(true)
	defer SetDebug(false)
	Debug("shown")
	assert.Contains(t, errOut.String(), "Debug:")
	assert.Contains(t, errOut.String(), Cyan)
	assert.True(t, DebugEnabled())
}

func TestQuietKeepsErrorsAndWarnings(t *testing.T) {
	out, errOut := buffers(t)
	SetQuiet(true)
	defer SetQuiet(false)

	Info("info")
	Success("success")
	LogInfo("log info")
	Warning("warned")
	Error("failed")

	assert.Empty(t, out.String())
	assert.NotContains(t, errOut.String(), "log info")
	assert.Contains(t, errOut.String(), "warned")
	assert.Contains(t, errOut.String(), "failed")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteFailureFallsBackToStderr(t *testing.T) {
	SetOutput(failingWriter{}, failingWriter{})
	defer SetOutput(nil, nil)

	out := capture(t, &os.Stderr, func() { Error("lost") })
	assert.Contains(t, out, "lost (console write failed: closed)")
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(msg string, _ ...any) { r.lines = append(r.lines, "debug:"+msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.lines = append(r.lines, "info:"+msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.lines = append(r.lines, "warn:"+msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.lines = append(r.lines, "error:"+msg) }

func TestMirrorsToLogger(t *testing.T) {
	buffers(t)
	rec := &recordingLogger{}
	SetLogger(rec)
	defer SetLogger(nil)
	SetQuiet(true)
	defer SetQuiet(false)

	Error("boom")
	Warning("careful")
	Success("done")

	assert.Equal(t, []string{"error:boom", "warn:careful", "info:done"}, rec.lines, "quiet still logs")
}
