// Package app runs the browser TUI: it starts the runtime queue and the
// orchestrator loops, opens the start pages and hands the model to
// bubbletea.
package app

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/area-links/internal/browser"
	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
	"github.com/cristianoliveira/area-links/internal/tui/state"
)

// ProgramRunner runs a bubbletea program. bind is called with the
// program's Send before the program starts.
type ProgramRunner interface {
	Run(model tea.Model, bind func(send func(tea.Msg))) error
}

// DefaultProgramRunner runs full screen with mouse cell motion, which
// reports motion while a button is held.
type DefaultProgramRunner struct{}

// NewDefaultProgramRunner creates a new DefaultProgramRunner.
func NewDefaultProgramRunner() *DefaultProgramRunner {
	return &DefaultProgramRunner{}
}

// Run starts the program and blocks until it exits.
func (r *DefaultProgramRunner) Run(model tea.Model, bind func(send func(tea.Msg))) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	bind(p.Send)
	_, err := p.Run()
	return err
}

// Notifier turns browser change callbacks into refresh messages. Bursts
// collapse into one pending refresh.
type Notifier struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending chan struct{}
}

// NewNotifier returns a notifier with nothing bound.
func NewNotifier() *Notifier {
	return &Notifier{pending: make(chan struct{}, 1)}
}

// Notify records that the view is stale. It never blocks.
func (n *Notifier) Notify() {
	select {
	case n.pending <- struct{}{}:
	default:
	}
}

// Bind sets where refresh messages are delivered and queues a refresh for
// changes made before the binding.
func (n *Notifier) Bind(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
	n.Notify()
}

// Run delivers refresh messages until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.pending:
			n.mu.Lock()
			send := n.send
			n.mu.Unlock()
			if send != nil {
				send(state.RefreshMsg{})
			}
		}
	}
}

// Deps are the parts the TUI drives.
type Deps struct {
	Session      *browser.Session
	Orchestrator *orchestrator.Orchestrator
	Menu         *browser.Menu
	// Notifier must be the one whose Notify the session was built with.
	Notifier *Notifier
	Logger   logging.Logger
	Runner   ProgramRunner
}

// Run opens urls, one tab each, and runs the TUI until it quits.
func Run(ctx context.Context, d Deps, urls []string) error {
	if d.Logger == nil {
		d.Logger = logging.NewNoop()
	}
	if d.Runner == nil {
		d.Runner = NewDefaultProgramRunner()
	}
	if d.Notifier == nil {
		d.Notifier = NewNotifier()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = d.Session.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = d.Orchestrator.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		d.Notifier.Run(ctx)
	}()

	d.Orchestrator.RefreshContextMenu(ctx)
	for _, u := range urls {
		if _, err := d.Session.Open(ctx, u); err != nil {
			d.Logger.Warn("open start page failed", "url", u, "error", err)
		}
	}

	model := state.NewModel(d.Session, d.Orchestrator, d.Menu,
		state.WithContext(ctx),
		state.WithLogger(d.Logger),
	)
	colors.DisableStructuredLogging()
	err := d.Runner.Run(model, d.Notifier.Bind)

	cancel()
	wg.Wait()
	if err != nil {
		colors.Error(fmt.Sprintf("Error running TUI: %v", err))
		return err
	}
	return nil
}
