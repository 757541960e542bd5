package main

import (
	"fmt"
	"io"

	"github.com/cristianoliveira/area-links/internal/browser"
	"github.com/cristianoliveira/area-links/internal/clipboard"
	"github.com/cristianoliveira/area-links/internal/config"
	"github.com/cristianoliveira/area-links/internal/frame"
	"github.com/cristianoliveira/area-links/internal/hooks"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/settings"
	"github.com/cristianoliveira/area-links/internal/storage"
	"github.com/cristianoliveira/area-links/internal/tui/state"
)

// runtime is the browser, the background orchestrator and the history
// store of one command invocation.
type runtime struct {
	store   storage.Store
	session *browser.Session
	orch    *orchestrator.Orchestrator
	menu    *browser.Menu
	hooks   *hooks.Runner
	logger  logging.Logger
}

type runtimeOptions struct {
	// clipboard replaces the system clipboard writer.
	clipboard ports.Clipboard
	// loader replaces the HTTP page loader.
	loader browser.Loader
	// frames replaces the frame scheduler of the selection controllers.
	frames frame.Requester
	// notify is called whenever a page changes.
	notify func()
	width  int
	height int
	// backend overrides history_backend.
	backend string
	// hookOutput receives hook script output. Nil keeps it in the log only.
	hookOutput io.Writer
}

// newStore opens the configured history store, or the named backend.
var newStore = func(backend string) (storage.Store, error) {
	if backend != "" {
		return storage.NewForBackend(backend)
	}
	return storage.NewFromConfig()
}

// newRuntime wires the components from the loaded configuration.
func newRuntime(opts runtimeOptions) (*runtime, error) {
	logger := logging.GetGlobal()

	store, err := newStore(opts.backend)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	runner := hooks.NewFromConfig(
		hooks.WithOutput(opts.hookOutput),
		hooks.WithLogger(logger.With("component", "hooks")),
	)

	cb := opts.clipboard
	if cb == nil {
		cb = clipboard.New(clipboard.WithLogger(logger.With("component", "clipboard")))
	}
	cb = runner.Clipboard(cb)

	loader := opts.loader
	if loader == nil {
		loader = browser.NewHTTPLoader(config.GetDuration("fetch_timeout", browser.DefaultFetchTimeout))
	}
	sessionOpts := []browser.Option{
		browser.WithLoader(loader),
		browser.WithClipboard(cb),
		browser.WithAutoInject(config.GetBool("auto_inject", false)),
		browser.WithDragThreshold(float64(config.GetInt("drag_threshold", settings.DefaultDragThreshold))),
		browser.WithLogger(logger.With("component", "browser")),
	}
	if opts.frames != nil {
		sessionOpts = append(sessionOpts, browser.WithFrames(opts.frames))
	}
	if opts.notify != nil {
		sessionOpts = append(sessionOpts, browser.WithNotify(opts.notify))
	}
	if opts.width > 0 && opts.height > 0 {
		sessionOpts = append(sessionOpts, browser.WithViewport(opts.width, opts.height))
	}
	session := browser.NewSession(sessionOpts...)

	menu := browser.NewMenu(state.Shortcuts())
	provider := settings.NewProvider(store, settings.WithLogger(logger.With("component", "settings")))
	orch := orchestrator.New(session, provider, store,
		orchestrator.WithContextMenu(menu),
		orchestrator.WithLivenessInterval(config.GetDuration("liveness_interval", orchestrator.DefaultLivenessInterval)),
		orchestrator.WithLinkHook(runner),
		orchestrator.WithLogger(logger.With("component", "background")),
	)
	session.SetBackground(orch)

	return &runtime{store: store, session: session, orch: orch, menu: menu, hooks: runner, logger: logger}, nil
}

// Close waits for background hooks and releases the history store.
func (r *runtime) Close() error {
	r.hooks.Wait()
	return r.store.Close()
}

// writerClipboard prints copied text instead of touching the clipboard.
type writerClipboard struct {
	w io.Writer
}

func (c writerClipboard) WriteText(text string) error {
	_, err := fmt.Fprintln(c.w, text)
	return err
}
