// Package clipboard writes selected links to the system clipboard.
//
// The system clipboard is used when a clipboard utility is available on a
// local session. Otherwise the text is sent to the terminal as an OSC 52
// escape sequence, which most terminal emulators copy on behalf of the
// program, also across SSH.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/cristianoliveira/area-links/internal/logging"
)

var (
	// ErrPermission is returned when the system clipboard refused the write.
	ErrPermission = errors.New("clipboard write not allowed")
	// ErrUnavailable is returned when neither the system clipboard nor the
	// terminal fallback could take the text.
	ErrUnavailable = errors.New("clipboard unavailable")
)

// Writer copies text with a terminal fallback.
type Writer struct {
	system      func(string) error
	unsupported bool
	remote      bool
	tmux        bool
	terminal    io.Writer
	logger      logging.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithSystem replaces the system clipboard write. A nil func marks the
// system clipboard as unsupported.
func WithSystem(write func(string) error) Option {
	return func(w *Writer) {
		w.system = write
		w.unsupported = write == nil
	}
}

// WithTerminal sets where the OSC 52 fallback is written.
func WithTerminal(out io.Writer) Option {
	return func(w *Writer) { w.terminal = out }
}

// WithRemote forces the fallback, as for an SSH session.
func WithRemote(remote bool) Option {
	return func(w *Writer) { w.remote = remote }
}

// WithLogger sets the writer logger.
func WithLogger(l logging.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// New returns a writer for the current process environment.
func New(opts ...Option) *Writer {
	w := &Writer{
		system:      clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
		remote:      os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "",
		tmux:        os.Getenv("TMUX") != "",
		terminal:    os.Stderr,
		logger:      logging.NewNoop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteText copies text. A failed system write falls back to the terminal.
// When both fail the error wraps ErrUnavailable, and also ErrPermission if
// the system clipboard refused the write.
func (w *Writer) WriteText(text string) error {
	if w.unsupported || w.remote || w.system == nil {
		return w.fallback(text)
	}
	sysErr := w.system(text)
	if sysErr == nil {
		return nil
	}
	w.logger.Warn("clipboard: system write failed, using terminal", "error", sysErr)
	err := w.fallback(text)
	if err == nil {
		return nil
	}
	if errors.Is(sysErr, fs.ErrPermission) {
		return fmt.Errorf("%w: %w: %v", ErrPermission, err, sysErr)
	}
	return fmt.Errorf("%w: system: %v", err, sysErr)
}

func (w *Writer) fallback(text string) error {
	if w.terminal == nil {
		return ErrUnavailable
	}
	seq := osc52.New(text)
	if w.tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(w.terminal); err != nil {
		w.logger.Warn("clipboard: terminal fallback failed", "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
