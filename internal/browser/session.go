// Package browser hosts tabs and windows in process. Each tab holds a laid-out
// page and, once injected, a selection controller; messages between the
// controllers and the background travel over the tab and runtime channels
// the way they would in a web browser.
package browser

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cristianoliveira/area-links/internal/frame"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/page"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/selection"
	"github.com/cristianoliveira/area-links/internal/settings"
	"github.com/google/uuid"
)

// ErrNoDocument is returned when a script is injected into a tab that has
// not finished loading.
var ErrNoDocument = errors.New("tab has no document")

// Background receives browser events and runtime messages.
type Background interface {
	HandleMessage(ctx context.Context, sender ports.Tab, req protocol.Request) (protocol.Response, error)
	OnTabActivated(ctx context.Context, tabID int)
	OnTabRemoved(tabID int)
	OnWindowFocused(ctx context.Context)
}

type tab struct {
	id       int
	windowID string
	url      string
	title    string
	loading  bool
	err      error
	styled   bool

	page       *page.Page
	controller *selection.Controller
}

type window struct {
	id     string
	tabs   []*tab
	active int
}

// Session is an in-process browser.
type Session struct {
	mu      sync.Mutex
	nextID  int
	tabs    map[int]*tab
	windows []*window
	focused string

	width      int
	viewHeight int
	autoInject bool
	threshold  float64

	loader     Loader
	clipboard  ports.Clipboard
	frames     frame.Requester
	logger     logging.Logger
	background Background
	notify     func()

	queue   []runtimeMessage
	pending chan struct{}
	loads   sync.WaitGroup
}

type runtimeMessage struct {
	req    protocol.Request
	sender ports.Tab
}

// Option configures a Session.
type Option func(*Session)

// WithLoader sets the document loader.
func WithLoader(l Loader) Option { return func(s *Session) { s.loader = l } }

// WithClipboard sets the clipboard given to selection controllers.
func WithClipboard(c ports.Clipboard) Option { return func(s *Session) { s.clipboard = c } }

// WithFrames sets the frame scheduler of selection controllers.
func WithFrames(r frame.Requester) Option { return func(s *Session) { s.frames = r } }

// WithLogger sets the session logger.
func WithLogger(l logging.Logger) Option { return func(s *Session) { s.logger = l } }

// WithAutoInject injects the selection script into every loaded page.
func WithAutoInject(on bool) Option { return func(s *Session) { s.autoInject = on } }

// WithDragThreshold sets the commit threshold of selection controllers.
func WithDragThreshold(t float64) Option { return func(s *Session) { s.threshold = t } }

// WithViewport sets the layout width and visible height of pages.
func WithViewport(width, height int) Option {
	return func(s *Session) { s.width, s.viewHeight = width, height }
}

// WithNotify registers a callback run whenever visible state changes.
func WithNotify(fn func()) Option { return func(s *Session) { s.notify = fn } }

// NewSession returns a browser with one empty window.
func NewSession(opts ...Option) *Session {
	s := &Session{
		tabs:       make(map[int]*tab),
		width:      page.DefaultWidth,
		viewHeight: 24,
		threshold:  settings.DefaultDragThreshold,
		loader:     NewHTTPLoader(DefaultFetchTimeout),
		frames:     frame.After(frame.DefaultInterval),
		logger:     logging.NewNoop(),
		pending:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	w := &window{id: uuid.NewString()}
	s.windows = append(s.windows, w)
	s.focused = w.id
	return s
}

// SetBackground connects the background that receives events and runtime
// messages.
func (s *Session) SetBackground(b Background) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = b
}

func (s *Session) changed() {
	if s.notify != nil {
		s.notify()
	}
}

func (s *Session) windowLocked(id string) *window {
	for _, w := range s.windows {
		if w.id == id {
			return w
		}
	}
	return nil
}

func (s *Session) snapshotLocked(t *tab) ports.Tab {
	w := s.windowLocked(t.windowID)
	out := ports.Tab{ID: t.id, WindowID: t.windowID, URL: t.url, Title: t.title}
	if w != nil {
		out.Index = slices.Index(w.tabs, t)
		out.Active = w.active == t.id && w.id == s.focused
	}
	return out
}

// Get returns the tab or ports.ErrTabNotFound.
func (s *Session) Get(_ context.Context, tabID int) (ports.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[tabID]
	if !ok {
		return ports.Tab{}, fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	return s.snapshotLocked(t), nil
}

// Active returns the active tab of the focused window.
func (s *Session) Active(_ context.Context) (ports.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.windowLocked(s.focused)
	if w == nil {
		return ports.Tab{}, ports.ErrTabNotFound
	}
	t, ok := s.tabs[w.active]
	if !ok {
		return ports.Tab{}, ports.ErrTabNotFound
	}
	return s.snapshotLocked(t), nil
}

// Tabs lists the tabs of the focused window in order.
func (s *Session) Tabs() []ports.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.windowLocked(s.focused)
	if w == nil {
		return nil
	}
	out := make([]ports.Tab, 0, len(w.tabs))
	for _, t := range w.tabs {
		out = append(out, s.snapshotLocked(t))
	}
	return out
}

// Windows returns the window ids, focused first.
func (s *Session) Windows() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{s.focused}
	for _, w := range s.windows {
		if w.id != s.focused {
			ids = append(ids, w.id)
		}
	}
	return ids
}

// Page returns the live page of a tab. It is nil while the tab loads.
func (s *Session) Page(tabID int) *page.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tabs[tabID]; ok {
		return t.page
	}
	return nil
}

// Controller returns the selection controller of a tab, nil until injected.
func (s *Session) Controller(tabID int) *selection.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tabs[tabID]; ok {
		return t.controller
	}
	return nil
}

// LoadState reports whether the tab is loading and the last load error.
func (s *Session) LoadState(tabID int) (loading bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tabs[tabID]; ok {
		return t.loading, t.err
	}
	return false, ports.ErrTabNotFound
}

// SendMessage delivers req to the tab's selection controller.
func (s *Session) SendMessage(ctx context.Context, tabID int, req protocol.Request) (protocol.Response, error) {
	s.mu.Lock()
	t, ok := s.tabs[tabID]
	var c *selection.Controller
	if ok {
		c = t.controller
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	if c == nil {
		return nil, fmt.Errorf("tab %d: %w", tabID, ports.ErrNoListener)
	}
	msg, err := protocol.Clone(req)
	if err != nil {
		return nil, err
	}
	return c.HandleMessage(ctx, msg)
}

// InsertCSS marks the selection styles as applied to the tab.
func (s *Session) InsertCSS(_ context.Context, tabID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[tabID]
	if !ok {
		return fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	if t.page == nil {
		return fmt.Errorf("tab %d: %w", tabID, ErrNoDocument)
	}
	t.styled = true
	return nil
}

// ExecuteScript attaches a selection controller to the tab's page. A tab
// that already has one keeps it.
func (s *Session) ExecuteScript(_ context.Context, tabID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[tabID]
	if !ok {
		return fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	return s.injectLocked(t)
}

func (s *Session) injectLocked(t *tab) error {
	if t.page == nil {
		return fmt.Errorf("tab %d: %w", t.id, ErrNoDocument)
	}
	if t.controller != nil {
		return nil
	}
	t.controller = selection.New(t.page, &tabRuntime{s: s, tabID: t.id}, s.clipboard,
		selection.WithFrames(s.frames),
		selection.WithDragThreshold(s.threshold),
		selection.WithLogger(s.logger.With("tab_id", t.id)),
	)
	s.logger.Debug("content script injected", "tab_id", t.id)
	return nil
}

// Create opens a tab and starts loading its URL.
func (s *Session) Create(ctx context.Context, opts ports.CreateTabOptions) (ports.Tab, error) {
	s.mu.Lock()
	w := s.windowLocked(opts.WindowID)
	if w == nil {
		w = s.windowLocked(s.focused)
	}
	t := s.addTabLocked(w, opts.URL, opts.Index)
	if opts.Active || w.active == 0 {
		w.active = t.id
	}
	snap := s.snapshotLocked(t)
	activated := opts.Active && w.id == s.focused
	bg := s.background
	s.mu.Unlock()

	s.startLoad(ctx, t.id, opts.URL)
	if activated && bg != nil {
		bg.OnTabActivated(ctx, t.id)
	}
	s.changed()
	return snap, nil
}

func (s *Session) addTabLocked(w *window, rawURL string, index *int) *tab {
	s.nextID++
	t := &tab{id: s.nextID, windowID: w.id, url: rawURL, loading: true}
	s.tabs[t.id] = t
	at := len(w.tabs)
	if index != nil && *index >= 0 && *index < at {
		at = *index
	}
	w.tabs = slices.Insert(w.tabs, at, t)
	return t
}

// CreateWindow opens a window with one tab per URL, the first one active.
func (s *Session) CreateWindow(ctx context.Context, urls []string, focused bool) error {
	s.mu.Lock()
	w := &window{id: uuid.NewString()}
	s.windows = append(s.windows, w)
	ids := make([]int, 0, len(urls))
	for _, u := range urls {
		t := s.addTabLocked(w, u, nil)
		ids = append(ids, t.id)
	}
	if len(ids) > 0 {
		w.active = ids[0]
	}
	if focused {
		s.focused = w.id
	}
	bg := s.background
	s.mu.Unlock()

	for i, id := range ids {
		s.startLoad(ctx, id, urls[i])
	}
	if focused && bg != nil {
		bg.OnWindowFocused(ctx)
	}
	s.changed()
	return nil
}

// Open creates an active tab in the focused window.
func (s *Session) Open(ctx context.Context, rawURL string) (ports.Tab, error) {
	return s.Create(ctx, ports.CreateTabOptions{URL: rawURL, Active: true})
}

// Navigate loads a new URL into a tab. The current page is hidden first,
// which ends any selection in it, and the new page starts without a
// content script.
func (s *Session) Navigate(ctx context.Context, tabID int, rawURL string) error {
	s.mu.Lock()
	t, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	c := t.controller
	t.controller = nil
	t.url = rawURL
	t.loading = true
	s.mu.Unlock()

	if c != nil {
		c.Navigate()
	}
	s.startLoad(ctx, tabID, rawURL)
	s.changed()
	return nil
}

func (s *Session) startLoad(ctx context.Context, tabID int, rawURL string) {
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		s.load(context.WithoutCancel(ctx), tabID, rawURL)
	}()
}

func (s *Session) load(ctx context.Context, tabID int, rawURL string) {
	s.mu.Lock()
	width, height := s.width, s.viewHeight
	s.mu.Unlock()

	doc, err := s.loader.Load(ctx, rawURL, width)

	s.mu.Lock()
	t, ok := s.tabs[tabID]
	if !ok || t.url != rawURL {
		// Closed or navigated away meanwhile.
		s.mu.Unlock()
		return
	}
	t.loading = false
	t.err = err
	if err != nil {
		s.logger.Warn("page load failed", "tab_id", tabID, "url", rawURL, "error", err)
		doc = &page.Document{URL: rawURL, Width: width}
	}
	t.title = doc.Title
	if doc.URL != "" {
		t.url = doc.URL
	}
	t.page = page.New(doc, page.WithViewHeight(height), page.WithNotify(s.changed))
	t.styled = false
	if s.autoInject && err == nil {
		if ierr := s.injectLocked(t); ierr != nil {
			s.logger.Warn("auto inject failed", "tab_id", tabID, "error", ierr)
		}
	}
	s.mu.Unlock()

	s.logger.Debug("page loaded", "tab_id", tabID, "url", rawURL)
	s.changed()
}

// Wait blocks until every started page load has finished.
func (s *Session) Wait() {
	s.loads.Wait()
}

// Activate focuses a tab and its window.
func (s *Session) Activate(ctx context.Context, tabID int) error {
	s.mu.Lock()
	t, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	w := s.windowLocked(t.windowID)
	changedWindow := s.focused != w.id
	w.active = t.id
	s.focused = w.id
	bg := s.background
	s.mu.Unlock()

	if bg != nil {
		if changedWindow {
			bg.OnWindowFocused(ctx)
		}
		bg.OnTabActivated(ctx, tabID)
	}
	s.changed()
	return nil
}

// Cycle activates the tab delta positions away in the focused window.
func (s *Session) Cycle(ctx context.Context, delta int) error {
	s.mu.Lock()
	w := s.windowLocked(s.focused)
	if w == nil || len(w.tabs) == 0 {
		s.mu.Unlock()
		return ports.ErrTabNotFound
	}
	i := slices.IndexFunc(w.tabs, func(t *tab) bool { return t.id == w.active })
	n := len(w.tabs)
	next := w.tabs[((i+delta)%n+n)%n].id
	s.mu.Unlock()
	return s.Activate(ctx, next)
}

// CycleWindow focuses the next window.
func (s *Session) CycleWindow(ctx context.Context) error {
	s.mu.Lock()
	if len(s.windows) < 2 {
		s.mu.Unlock()
		return nil
	}
	i := slices.IndexFunc(s.windows, func(w *window) bool { return w.id == s.focused })
	w := s.windows[(i+1)%len(s.windows)]
	active := w.active
	s.mu.Unlock()

	if active == 0 {
		return nil
	}
	return s.Activate(ctx, active)
}

// Close removes a tab. Its page is hidden first, which ends any selection
// in it. An emptied window is removed.
func (s *Session) Close(ctx context.Context, tabID int) error {
	s.mu.Lock()
	t, ok := s.tabs[tabID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	c := t.controller
	s.mu.Unlock()

	if c != nil {
		c.Navigate()
	}

	s.mu.Lock()
	if s.tabs[tabID] != t {
		s.mu.Unlock()
		return fmt.Errorf("tab %d: %w", tabID, ports.ErrTabNotFound)
	}
	delete(s.tabs, tabID)
	w := s.windowLocked(t.windowID)
	i := slices.Index(w.tabs, t)
	w.tabs = slices.Delete(w.tabs, i, i+1)
	next := 0
	if w.active == tabID && len(w.tabs) > 0 {
		next = w.tabs[min(i, len(w.tabs)-1)].id
		w.active = next
	}
	if len(w.tabs) == 0 && len(s.windows) > 1 {
		s.windows = slices.DeleteFunc(s.windows, func(x *window) bool { return x == w })
		if s.focused == w.id {
			s.focused = s.windows[0].id
			next = s.windows[0].active
		}
	} else if len(w.tabs) == 0 {
		w.active = 0
	}
	bg := s.background
	s.mu.Unlock()

	if bg != nil {
		bg.OnTabRemoved(tabID)
		if next != 0 {
			bg.OnTabActivated(ctx, next)
		}
	}
	s.changed()
	return nil
}

// SetViewport updates the layout width for future loads and the visible
// height of every page.
func (s *Session) SetViewport(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.viewHeight = height
		for _, t := range s.tabs {
			if t.page != nil {
				t.page.SetViewHeight(height)
			}
		}
	}
}

var _ ports.Tabs = (*Session)(nil)

// tabRuntime is the runtime channel of one tab's content script. Messages
// are queued and delivered to the background by Run or Flush, never on the
// sender's goroutine.
type tabRuntime struct {
	s     *Session
	tabID int
}

func (r *tabRuntime) Send(req protocol.Request) {
	msg, err := protocol.Clone(req)
	if err != nil {
		r.s.logger.Error("dropping runtime message", "tab_id", r.tabID, "type", req.Type(), "error", err)
		return
	}
	r.s.mu.Lock()
	sender := ports.Tab{ID: r.tabID}
	if t, ok := r.s.tabs[r.tabID]; ok {
		sender = r.s.snapshotLocked(t)
	}
	r.s.queue = append(r.s.queue, runtimeMessage{req: msg, sender: sender})
	r.s.mu.Unlock()

	select {
	case r.s.pending <- struct{}{}:
	default:
	}
}

// Run delivers runtime messages to the background until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.pending:
			_, _ = s.Flush(ctx)
		}
	}
}

// Flush delivers every queued runtime message. It returns how many were
// handled and the first error the background reported.
func (s *Session) Flush(ctx context.Context) (int, error) {
	n := 0
	var first error
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return n, first
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		bg := s.background
		s.mu.Unlock()

		n++
		if bg == nil {
			s.logger.Debug("no background for runtime message", "type", msg.req.Type())
			continue
		}
		if _, err := bg.HandleMessage(ctx, msg.sender, msg.req); err != nil {
			s.logger.Error("runtime message failed", "type", msg.req.Type(), "tab_id", msg.sender.ID, "error", err)
			if first == nil {
				first = fmt.Errorf("%s: %w", msg.req.Type(), err)
			}
		}
	}
}
