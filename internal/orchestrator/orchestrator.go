// Package orchestrator coordinates selections across tabs. It starts
// selections on request, keeps at most one tab selecting at a time, opens
// committed links and records history.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/settings"
)

// Command and context-menu identifiers.
const (
	CommandActivate     = "activate-selection"
	CommandActivateCopy = "activate-selection-copy"
	MenuActivate        = "activate-selection-menu"
	MenuActivateCopy    = "activate-selection-copy-menu"
)

// DefaultLivenessInterval is how often the lock holder is checked.
const DefaultLivenessInterval = time.Minute

var (
	// ErrNotSelectable is returned for tabs that are not http(s) pages.
	ErrNotSelectable = errors.New("selection is only available on web pages")
	// ErrUnknownCommand is returned for an unrecognized command or menu id.
	ErrUnknownCommand = errors.New("unknown command")
)

// selectionLock records the one tab allowed to run a selection.
type selectionLock struct {
	mu    sync.Mutex
	tabID int
	held  bool
}

func (l *selectionLock) get() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tabID, l.held
}

func (l *selectionLock) set(tabID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tabID, l.held = tabID, true
}

// releaseIf clears the lock when tabID holds it and reports whether it did.
func (l *selectionLock) releaseIf(tabID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held || l.tabID != tabID {
		return false
	}
	l.tabID, l.held = 0, false
	return true
}

// Orchestrator is the background side of the selection protocol.
type Orchestrator struct {
	tabs     ports.Tabs
	settings ports.SettingsProvider
	store    ports.HistoryStore
	menu     ports.ContextMenu
	logger   logging.Logger
	liveness time.Duration
	hook     LinkHook

	lock selectionLock
	// handoff serializes lock transfers. It is held across the messages of
	// a transfer; lock.mu never is.
	handoff sync.Mutex
}

// LinkHook is told about links the background opened.
type LinkHook interface {
	LinksOpened(ctx context.Context, urls []string) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithContextMenu sets the menu refreshed on tab and focus changes.
func WithContextMenu(m ports.ContextMenu) Option {
	return func(o *Orchestrator) { o.menu = m }
}

// WithLinkHook runs h after every batch of opened links.
func WithLinkHook(h LinkHook) Option {
	return func(o *Orchestrator) { o.hook = h }
}

// WithLivenessInterval sets how often Run checks the lock holder.
func WithLivenessInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.liveness = d
		}
	}
}

// New returns an orchestrator with no active selection.
func New(tabs ports.Tabs, sp ports.SettingsProvider, store ports.HistoryStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tabs:     tabs,
		settings: sp,
		store:    store,
		logger:   logging.NewNoop(),
		liveness: DefaultLivenessInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ActiveTab returns the tab holding the selection lock.
func (o *Orchestrator) ActiveTab() (int, bool) {
	return o.lock.get()
}

func selectable(tab ports.Tab) bool {
	return tab.ID != 0 && (strings.HasPrefix(tab.URL, "http://") || strings.HasPrefix(tab.URL, "https://"))
}

// TriggerSelection arms a selection in tab. Another tab holding the lock is
// asked to reset first. The lock moves to tab once it acknowledges; a tab
// without a content script is injected and retried once.
func (o *Orchestrator) TriggerSelection(ctx context.Context, tab ports.Tab, mode protocol.Mode) error {
	if !selectable(tab) {
		o.logger.Debug("selection ignored", "tab_id", tab.ID, "url", tab.URL)
		return ErrNotSelectable
	}

	o.handoff.Lock()
	defer o.handoff.Unlock()

	if holder, held := o.lock.get(); held && holder != tab.ID {
		o.reset(ctx, holder)
	}

	msg := InitiateMessage(o.loadSettings(ctx), mode)
	resp, err := o.tabs.SendMessage(ctx, tab.ID, msg)
	if errors.Is(err, ports.ErrNoListener) {
		if err := o.inject(ctx, tab.ID); err != nil {
			return err
		}
		resp, err = o.tabs.SendMessage(ctx, tab.ID, msg)
		if err != nil {
			o.logger.Warn("initiate after injection failed", "tab_id", tab.ID, "error", err)
			return nil
		}
	} else if err != nil {
		return fmt.Errorf("initiate selection in tab %d: %w", tab.ID, err)
	}

	if protocol.Succeeded(resp) {
		o.lock.set(tab.ID)
		o.logger.Info("selection active", "tab_id", tab.ID, "mode", mode.String())
	}
	return nil
}

func (o *Orchestrator) inject(ctx context.Context, tabID int) error {
	if err := o.tabs.InsertCSS(ctx, tabID); err != nil {
		return fmt.Errorf("insert stylesheet in tab %d: %w", tabID, err)
	}
	if err := o.tabs.ExecuteScript(ctx, tabID); err != nil {
		return fmt.Errorf("inject content script in tab %d: %w", tabID, err)
	}
	return nil
}

// reset asks tabID to cancel its selection. Failures are ignored.
func (o *Orchestrator) reset(ctx context.Context, tabID int) {
	if _, err := o.tabs.SendMessage(ctx, tabID, protocol.ResetSelection{}); err != nil {
		o.logger.Debug("reset selection failed", "tab_id", tabID, "error", err)
	}
}

func (o *Orchestrator) loadSettings(ctx context.Context) settings.Settings {
	s, err := o.settings.Load(ctx)
	if err != nil {
		o.logger.Warn("load settings failed, using defaults", "error", err)
		return settings.Defaults()
	}
	return s
}

// InitiateMessage builds the initiate payload for mode. Histories are only
// sent when their toggle is on.
func InitiateMessage(s settings.Settings, mode protocol.Mode) protocol.InitiateSelection {
	msg := protocol.InitiateSelection{
		Mode:                        mode,
		Style:                       s.SelectionStyle,
		SelectionBoxStyle:           s.SelectionBoxStyle,
		SelectionBoxColor:           s.SelectionBoxColor,
		HighlightStyle:              s.HighlightStyle,
		TabLimit:                    s.TabLimit,
		CheckDuplicatesOnCopy:       s.CheckDuplicatesOnCopy,
		ApplyExclusionsOnCopy:       s.ApplyExclusionsOnCopy,
		UseHistory:                  s.UseHistory,
		UseCopyHistory:              s.UseCopyHistory,
		RemoveDuplicatesInSelection: s.RemoveDuplicatesInSelection,
		LinkHistory:                 []string{},
		CopyHistory:                 []string{},
		ExcludedDomains:             append([]string{}, s.ProcessedExcludedDomains...),
		ExcludedWords:               append([]string{}, s.ProcessedExcludedWords...),
	}
	if s.UseHistory {
		msg.LinkHistory = append(msg.LinkHistory, s.LinkHistory...)
	}
	if s.UseCopyHistory {
		msg.CopyHistory = append(msg.CopyHistory, s.CopyHistory...)
	}
	return msg
}

// OnCommand handles a keyboard shortcut.
func (o *Orchestrator) OnCommand(ctx context.Context, name string, tab ports.Tab) error {
	switch name {
	case CommandActivate:
		return o.TriggerSelection(ctx, tab, protocol.ModeOpen)
	case CommandActivateCopy:
		return o.TriggerSelection(ctx, tab, protocol.ModeCopy)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// OnMenuClicked handles a context-menu entry.
func (o *Orchestrator) OnMenuClicked(ctx context.Context, itemID string, tab ports.Tab) error {
	if tab.ID == 0 {
		return nil
	}
	switch itemID {
	case MenuActivate:
		return o.TriggerSelection(ctx, tab, protocol.ModeOpen)
	case MenuActivateCopy:
		return o.TriggerSelection(ctx, tab, protocol.ModeCopy)
	default:
		return fmt.Errorf("%w: menu item %q", ErrUnknownCommand, itemID)
	}
}

// OnTabActivated cancels a selection held by another tab and refreshes the
// context menu.
func (o *Orchestrator) OnTabActivated(ctx context.Context, tabID int) {
	o.handoff.Lock()
	if holder, held := o.lock.get(); held && holder != tabID {
		o.reset(ctx, holder)
		o.lock.releaseIf(holder)
	}
	o.handoff.Unlock()
	o.RefreshContextMenu(ctx)
}

// OnWindowFocused refreshes the context menu.
func (o *Orchestrator) OnWindowFocused(ctx context.Context) {
	o.RefreshContextMenu(ctx)
}

// OnTabRemoved releases the lock held by a closed tab.
func (o *Orchestrator) OnTabRemoved(tabID int) {
	if o.lock.releaseIf(tabID) {
		o.logger.Debug("selection tab closed", "tab_id", tabID)
	}
}

// RefreshContextMenu rebuilds the menu entries according to the settings.
func (o *Orchestrator) RefreshContextMenu(ctx context.Context) {
	if o.menu == nil {
		return
	}
	s := o.loadSettings(ctx)
	if err := o.menu.Refresh(ctx, s.ShowContextMenu); err != nil {
		o.logger.Warn("refresh context menu failed", "error", err)
	}
}

// Run checks the lock holder every liveness interval until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.liveness)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.CheckLiveness(ctx)
		}
	}
}

// CheckLiveness releases the lock when its tab no longer exists.
func (o *Orchestrator) CheckLiveness(ctx context.Context) {
	holder, held := o.lock.get()
	if !held {
		return
	}
	if _, err := o.tabs.Get(ctx, holder); errors.Is(err, ports.ErrTabNotFound) {
		if o.lock.releaseIf(holder) {
			o.logger.Info("released selection of missing tab", "tab_id", holder)
		}
	}
}

// ProcessLinks opens urls committed in origin and records them in the link
// history. A nil origin opens at the end of the current window.
func (o *Orchestrator) ProcessLinks(ctx context.Context, urls []string, origin *ports.Tab) error {
	s := o.loadSettings(ctx)
	list := append([]string(nil), urls...)
	if s.ReverseOrder {
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	if len(list) == 0 {
		return nil
	}

	var errs []error
	if s.OpenInNewWindow {
		if err := o.tabs.CreateWindow(ctx, list, true); err != nil {
			errs = append(errs, fmt.Errorf("open window: %w", err))
		}
	} else {
		start, next := 0, s.OpenNextToParent && origin != nil
		if next {
			start = origin.Index + 1
		}
		for i, u := range list {
			opts := ports.CreateTabOptions{URL: u}
			if origin != nil {
				opts.WindowID = origin.WindowID
			}
			if next {
				idx := start + i
				opts.Index = &idx
			}
			if _, err := o.tabs.Create(ctx, opts); err != nil {
				errs = append(errs, fmt.Errorf("open %s: %w", u, err))
			}
		}
	}

	if s.UseHistory {
		if err := o.record(ctx, history.KindLinks, list); err != nil {
			errs = append(errs, err)
		}
	}
	o.logger.Info("links opened", "count", len(list), "new_window", s.OpenInNewWindow)
	if o.hook != nil {
		if err := o.hook.LinksOpened(ctx, list); err != nil {
			errs = append(errs, fmt.Errorf("links-opened hook: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SaveCopyHistory records copied urls when the copy history is enabled.
func (o *Orchestrator) SaveCopyHistory(ctx context.Context, urls []string) error {
	if !o.loadSettings(ctx).UseCopyHistory {
		return nil
	}
	return o.record(ctx, history.KindCopies, urls)
}

func (o *Orchestrator) record(ctx context.Context, kind history.Kind, urls []string) error {
	if o.store == nil {
		return nil
	}
	existing, err := o.store.Load(ctx, kind)
	if err != nil {
		return fmt.Errorf("load %s: %w", kind, err)
	}
	if err := o.store.Save(ctx, kind, history.Merge(urls, existing, history.Limit)); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

// HandleMessage is the runtime-channel listener for messages sent by the
// content side of sender.
func (o *Orchestrator) HandleMessage(ctx context.Context, sender ports.Tab, req protocol.Request) (protocol.Response, error) {
	return protocol.Dispatch(ctx, runtimeListener{o: o, sender: sender}, req)
}

// runtimeListener serves runtime messages. Tab-channel messages are
// rejected.
type runtimeListener struct {
	o      *Orchestrator
	sender ports.Tab
}

var _ protocol.Handler = runtimeListener{}

func (runtimeListener) InitiateSelection(_ context.Context, req protocol.InitiateSelection) (protocol.Response, error) {
	return nil, protocol.Reject(req.Type())
}

func (runtimeListener) ResetSelection(context.Context) (protocol.Response, error) {
	return nil, protocol.Reject(protocol.TypeResetSelection)
}

func (l runtimeListener) Ping(context.Context) (protocol.Response, error) {
	return protocol.Pong{}, nil
}

func (l runtimeListener) SelectionDeactivated(context.Context) (protocol.Response, error) {
	if l.o.lock.releaseIf(l.sender.ID) {
		l.o.logger.Debug("selection deactivated", "tab_id", l.sender.ID)
	}
	return nil, nil
}

func (l runtimeListener) OpenLinks(ctx context.Context, req protocol.OpenLinks) (protocol.Response, error) {
	var origin *ports.Tab
	if l.sender.ID != 0 {
		origin = &l.sender
	}
	return nil, l.o.ProcessLinks(ctx, req.URLs, origin)
}

func (l runtimeListener) SaveCopyHistory(ctx context.Context, req protocol.SaveCopyHistory) (protocol.Response, error) {
	return nil, l.o.SaveCopyHistory(ctx, req.URLs)
}

func (l runtimeListener) TriggerSelectionFromPopup(ctx context.Context, req protocol.TriggerSelectionFromPopup) (protocol.Response, error) {
	tab, err := l.o.tabs.Active(ctx)
	if err != nil {
		l.o.logger.Debug("popup trigger without active tab", "error", err)
		return nil, nil
	}
	return nil, l.o.TriggerSelection(ctx, tab, req.Mode)
}

func (l runtimeListener) RefreshContextMenu(ctx context.Context) (protocol.Response, error) {
	l.o.RefreshContextMenu(ctx)
	return nil, nil
}
