// Package errors routes user-facing messages to the console or the TUI
// status line.
package errors

import (
	stderrors "errors"
	"sync"

	"github.com/cristianoliveira/area-links/internal/clipboard"
	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
	"github.com/cristianoliveira/area-links/internal/ports"
)

// ErrorHandler receives messages by severity.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// MessageType is the severity of a message.
type MessageType int

const (
	MessageTypeError MessageType = iota
	MessageTypeWarning
	MessageTypeInfo
	MessageTypeSuccess
)

// String returns the label shown before a message.
func (t MessageType) String() string {
	switch t {
	case MessageTypeWarning:
		return "warning"
	case MessageTypeInfo:
		return "info"
	case MessageTypeSuccess:
		return "ok"
	default:
		return "error"
	}
}

// Severity maps a failure to the severity it is reported with. Expected
// conditions of the selection flow are not errors to the user.
func Severity(err error) MessageType {
	switch {
	case stderrors.Is(err, orchestrator.ErrNotSelectable):
		return MessageTypeInfo
	case stderrors.Is(err, ports.ErrNoListener),
		stderrors.Is(err, ports.ErrTabNotFound),
		stderrors.Is(err, clipboard.ErrUnavailable):
		return MessageTypeWarning
	default:
		return MessageTypeError
	}
}

// Report sends err to h with the severity from Severity. A nil err is
// ignored.
func Report(h ErrorHandler, err error) {
	if err == nil || h == nil {
		return
	}
	msg := err.Error()
	switch Severity(err) {
	case MessageTypeInfo:
		h.Info(msg)
	case MessageTypeWarning:
		h.Warning(msg)
	default:
		h.Error(msg)
	}
}

// ColorOutput prints colored console lines.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

type colorsOutput struct{}

func (colorsOutput) Error(msgs ...string)   { colors.Error(msgs...) }
func (colorsOutput) Warning(msgs ...string) { colors.Warning(msgs...) }
func (colorsOutput) Info(msgs ...string)    { colors.Info(msgs...) }
func (colorsOutput) Success(msgs ...string) { colors.Success(msgs...) }

// CLIHandler prints messages through a ColorOutput, one at a time.
type CLIHandler struct {
	mu  sync.Mutex
	out ColorOutput
}

// NewCLIHandler returns a handler printing to out.
func NewCLIHandler(out ColorOutput) *CLIHandler {
	return &CLIHandler{out: out}
}

// NewDefaultCLIHandler returns a handler printing through the colors package.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(colorsOutput{})
}

func (h *CLIHandler) Error(msg string)   { h.print(h.out.Error, msg) }
func (h *CLIHandler) Warning(msg string) { h.print(h.out.Warning, msg) }
func (h *CLIHandler) Info(msg string)    { h.print(h.out.Info, msg) }
func (h *CLIHandler) Success(msg string) { h.print(h.out.Success, msg) }

func (h *CLIHandler) print(fn func(...string), msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(msg)
}
