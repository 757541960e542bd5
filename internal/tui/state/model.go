// Package state holds the bubbletea model of the browser: the tab bar, the
// page view, mouse input routed to the tab's selection controller and the
// menus that trigger selections.
package state

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/area-links/internal/browser"
	"github.com/cristianoliveira/area-links/internal/errors"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/page"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/selection"
)

const (
	chromeLines           = 2
	defaultViewportWidth  = 80
	defaultViewportHeight = 24
	wheelStep             = 3
	statusTickInterval    = time.Second
)

// Browser is the tab session the model drives.
type Browser interface {
	Tabs() []ports.Tab
	Windows() []string
	Active(ctx context.Context) (ports.Tab, error)
	Page(tabID int) *page.Page
	Controller(tabID int) *selection.Controller
	LoadState(tabID int) (bool, error)
	Open(ctx context.Context, rawURL string) (ports.Tab, error)
	Navigate(ctx context.Context, tabID int, rawURL string) error
	Close(ctx context.Context, tabID int) error
	Cycle(ctx context.Context, delta int) error
	CycleWindow(ctx context.Context) error
	SetViewport(width, height int)
}

// Background is the orchestrator surface reached from keys and menus.
type Background interface {
	OnCommand(ctx context.Context, name string, tab ports.Tab) error
	OnMenuClicked(ctx context.Context, itemID string, tab ports.Tab) error
	HandleMessage(ctx context.Context, sender ports.Tab, req protocol.Request) (protocol.Response, error)
	ActiveTab() (int, bool)
}

// MenuSource lists the context menu entries.
type MenuSource interface {
	Entries() []browser.MenuEntry
}

type overlay int

const (
	overlayNone overlay = iota
	overlayMenu
	overlayPopup
	overlayPrompt
)

type promptTarget int

const (
	promptNewTab promptTarget = iota
	promptNavigate
)

var popupModes = []protocol.Mode{protocol.ModeOpen, protocol.ModeCopy}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx        context.Context
	browser    Browser
	background Background
	menu       MenuSource
	logger     logging.Logger

	keys   keyMap
	help   help.Model
	input  textinput.Model
	status *errors.TUIHandler

	width  int
	height int

	overlay  overlay
	cursor   int
	menuTab  ports.Tab
	prompt   promptTarget
	leftDown bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the model logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithContext sets the context actions run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// NewModel returns a model over b. menu may be nil when the context menu is
// not available.
func NewModel(b Browser, bg Background, menu MenuSource, opts ...Option) *Model {
	input := textinput.New()
	input.Prompt = "url: "
	input.Placeholder = "https://"
	input.CharLimit = 2048

	m := &Model{
		ctx:        context.Background(),
		browser:    b,
		background: bg,
		menu:       menu,
		logger:     logging.NewNoop(),
		keys:       defaultKeyMap(),
		help:       help.New(),
		input:      input,
		width:      defaultViewportWidth,
		height:     defaultViewportHeight,
	}
	m.status = errors.NewTUIHandler(nil)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status returns the status handler, used to report failures of work
// started outside the model.
func (m *Model) Status() *errors.TUIHandler {
	return m.status
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(statusTick(), textinput.Blink)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.browser.SetViewport(msg.Width, m.pageHeight())
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		m.handleMouseMsg(msg)
		return m, nil
	case RefreshMsg:
		m.collectAlerts()
		return m, nil
	case actionDoneMsg:
		m.handleActionDone(msg)
		return m, nil
	case statusTickMsg:
		return m, statusTick()
	}
	if m.overlay == overlayPrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) pageHeight() int {
	return max(m.height-chromeLines, 1)
}

// activeTab returns the focused tab. ok is false when the window is empty.
func (m *Model) activeTab() (ports.Tab, bool) {
	tab, err := m.browser.Active(m.ctx)
	if err != nil {
		return ports.Tab{}, false
	}
	return tab, true
}

func (m *Model) activeController() *selection.Controller {
	tab, ok := m.activeTab()
	if !ok {
		return nil
	}
	return m.browser.Controller(tab.ID)
}

// collectAlerts moves page alerts of every tab into the status line.
func (m *Model) collectAlerts() {
	for _, tab := range m.browser.Tabs() {
		p := m.browser.Page(tab.ID)
		if p == nil {
			continue
		}
		for _, alert := range p.TakeAlerts() {
			m.status.Error(alert)
		}
	}
}

func (m *Model) handleActionDone(msg actionDoneMsg) {
	if msg.err != nil {
		m.logger.Warn("action failed", "action", msg.action, "error", msg.err)
		errors.Report(m.status, msg.err)
		return
	}
	if msg.success != "" {
		m.status.Info(msg.success)
	}
}

// run executes fn off the update loop and reports its outcome.
func (m *Model) run(action, success string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, success: success, err: fn(ctx)}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(statusTickInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
}
