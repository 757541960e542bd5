package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteTextUsesSystemClipboard(t *testing.T) {
	t.Setenv("TMUX", "")
	var got string
	var term bytes.Buffer
	w := New(
		WithSystem(func(s string) error { got = s; return nil }),
		WithRemote(false),
		WithTerminal(&term),
	)

	require.NoError(t, w.WriteText("https://a.test/\nhttps://b.test/"))
	require.Equal(t, "https://a.test/\nhttps://b.test/", got)
	require.Zero(t, term.Len())
}

func TestWriteTextFallsBackToOSC52(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "remote session", opts: []Option{WithSystem(func(string) error { return nil }), WithRemote(true)}},
		{name: "no system clipboard", opts: []Option{WithSystem(nil), WithRemote(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TMUX", "")
			var term bytes.Buffer
			w := New(append(tt.opts, WithTerminal(&term))...)

			require.NoError(t, w.WriteText("https://a.test/"))
			out := term.String()
			require.Contains(t, out, "\x1b]52;c;")
			require.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("https://a.test/")))
		})
	}
}

func TestWriteTextWrapsForTmux(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-0/default,1,0")
	var term bytes.Buffer
	w := New(WithSystem(nil), WithTerminal(&term))

	require.NoError(t, w.WriteText("x"))
	require.Contains(t, term.String(), "\x1bPtmux;")
}

func TestSystemFailureFallsBackToOSC52(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "utility exits", err: errors.New("exit status 1")},
		{name: "permission", err: fmt.Errorf("exec xclip: %w", fs.ErrPermission)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TMUX", "")
			var term bytes.Buffer
			w := New(WithSystem(func(string) error { return tt.err }), WithRemote(false), WithTerminal(&term))

			require.NoError(t, w.WriteText("https://a.test/"))
			require.Contains(t, term.String(), "\x1b]52;c;")
		})
	}
}

func TestWriteTextErrors(t *testing.T) {
	t.Run("permission and no terminal", func(t *testing.T) {
		w := New(WithSystem(func(string) error {
			return fmt.Errorf("exec xclip: %w", fs.ErrPermission)
		}), WithRemote(false), WithTerminal(nil))
		err := w.WriteText("x")
		require.ErrorIs(t, err, ErrPermission)
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("system failure and terminal failure", func(t *testing.T) {
		w := New(WithSystem(func(string) error { return errors.New("exit status 1") }),
			WithRemote(false), WithTerminal(failingWriter{}))
		err := w.WriteText("x")
		require.ErrorIs(t, err, ErrUnavailable)
		require.NotErrorIs(t, err, ErrPermission)
		require.Contains(t, err.Error(), "exit status 1")
	})

	t.Run("no terminal", func(t *testing.T) {
		w := New(WithSystem(nil), WithTerminal(nil))
		require.ErrorIs(t, w.WriteText("x"), ErrUnavailable)
	})

	t.Run("terminal write fails", func(t *testing.T) {
		w := New(WithSystem(nil), WithTerminal(failingWriter{}))
		require.ErrorIs(t, w.WriteText("x"), ErrUnavailable)
	})
}
