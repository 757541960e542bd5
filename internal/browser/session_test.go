package browser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cristianoliveira/area-links/internal/frame"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
	"github.com/cristianoliveira/area-links/internal/page"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/selection"
	"github.com/cristianoliveira/area-links/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linksHTML = `<title>Links</title><p><a href="https://a.test/">Alpha</a> <a href="https://b.test/">Beta</a></p>`

type fakeLoader struct {
	pages map[string]string
}

func (l fakeLoader) Load(_ context.Context, rawURL string, width int) (*page.Document, error) {
	html, ok := l.pages[rawURL]
	if !ok {
		return &page.Document{URL: rawURL, Width: width}, nil
	}
	return page.ParseString(html, rawURL, width)
}

type failingLoader struct{}

func (failingLoader) Load(context.Context, string, int) (*page.Document, error) {
	return nil, errors.New("connection refused")
}

type event struct {
	kind  string
	tabID int
}

type recordingBackground struct {
	mu       sync.Mutex
	events   []event
	messages []protocol.Request
	senders  []ports.Tab
	err      error
}

func (b *recordingBackground) HandleMessage(_ context.Context, sender ports.Tab, req protocol.Request) (protocol.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, req)
	b.senders = append(b.senders, sender)
	return nil, b.err
}

func (b *recordingBackground) OnTabActivated(_ context.Context, tabID int) {
	b.record("activated", tabID)
}

func (b *recordingBackground) OnTabRemoved(tabID int) {
	b.record("removed", tabID)
}

func (b *recordingBackground) OnWindowFocused(context.Context) {
	b.record("focused", 0)
}

func (b *recordingBackground) record(kind string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{kind, id})
}

type stubSettings struct{ s settings.Settings }

func (p stubSettings) Load(context.Context) (settings.Settings, error) { return p.s.Clone(), nil }

type nullClipboard struct{ text string }

func (c *nullClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	base := []Option{
		WithLoader(fakeLoader{pages: map[string]string{"https://links.test/": linksHTML}}),
		WithFrames((&frame.Manual{}).Request),
		WithViewport(40, 10),
	}
	return NewSession(append(base, opts...)...)
}

func TestSessionOpenLoadsPage(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	tab, err := s.Open(ctx, "https://links.test/")
	require.NoError(t, err)
	s.Wait()

	got, err := s.Get(ctx, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, "Links", got.Title)
	assert.True(t, got.Active)
	assert.Equal(t, 0, got.Index)

	p := s.Page(tab.ID)
	require.NotNil(t, p)
	assert.Len(t, p.Anchors(), 2)

	loading, loadErr := s.LoadState(tab.ID)
	assert.False(t, loading)
	assert.NoError(t, loadErr)
}

func TestSessionLoadFailureLeavesEmptyPage(t *testing.T) {
	s := newSession(t, WithLoader(failingLoader{}))
	tab, err := s.Open(context.Background(), "https://down.test/")
	require.NoError(t, err)
	s.Wait()

	_, loadErr := s.LoadState(tab.ID)
	require.Error(t, loadErr)
	require.NotNil(t, s.Page(tab.ID))
	assert.Empty(t, s.Page(tab.ID).Anchors())
}

func TestSessionSendMessageWithoutScript(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	_, err := s.SendMessage(ctx, 99, protocol.Ping{})
	require.ErrorIs(t, err, ports.ErrTabNotFound)

	tab, err := s.Open(ctx, "https://links.test/")
	require.NoError(t, err)
	s.Wait()

	_, err = s.SendMessage(ctx, tab.ID, protocol.Ping{})
	require.ErrorIs(t, err, ports.ErrNoListener)

	require.NoError(t, s.InsertCSS(ctx, tab.ID))
	require.NoError(t, s.ExecuteScript(ctx, tab.ID))
	c := s.Controller(tab.ID)
	require.NotNil(t, c)
	require.NoError(t, s.ExecuteScript(ctx, tab.ID))
	assert.Same(t, c, s.Controller(tab.ID))

	resp, err := s.SendMessage(ctx, tab.ID, protocol.Ping{})
	require.NoError(t, err)
	assert.Equal(t, protocol.Pong{}, resp)
}

func TestSessionAutoInject(t *testing.T) {
	s := newSession(t, WithAutoInject(true))
	tab, err := s.Open(context.Background(), "https://links.test/")
	require.NoError(t, err)
	s.Wait()
	assert.NotNil(t, s.Controller(tab.ID))
}

func TestSessionCreateAtIndex(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	first, _ := s.Open(ctx, "https://links.test/")
	second, _ := s.Open(ctx, "about:blank")
	at := 1
	inserted, err := s.Create(ctx, ports.CreateTabOptions{URL: "about:blank#x", Index: &at})
	require.NoError(t, err)
	s.Wait()

	ids := []int{}
	for _, tab := range s.Tabs() {
		ids = append(ids, tab.ID)
	}
	assert.Equal(t, []int{first.ID, inserted.ID, second.ID}, ids)
	assert.Equal(t, 1, inserted.Index)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestSessionCreateWindowFocusesIt(t *testing.T) {
	s := newSession(t)
	bg := &recordingBackground{}
	s.SetBackground(bg)
	ctx := context.Background()

	_, _ = s.Open(ctx, "https://links.test/")
	require.NoError(t, s.CreateWindow(ctx, []string{"about:blank#1", "about:blank#2"}, true))
	s.Wait()

	assert.Len(t, s.Windows(), 2)
	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "about:blank#1", active.URL)
	assert.Len(t, s.Tabs(), 2)
	assert.Contains(t, bg.events, event{"focused", 0})

	require.NoError(t, s.CycleWindow(ctx))
	active, err = s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://links.test/", active.URL)
}

func TestSessionActivateAndClose(t *testing.T) {
	s := newSession(t)
	bg := &recordingBackground{}
	s.SetBackground(bg)
	ctx := context.Background()

	a, _ := s.Open(ctx, "https://links.test/")
	b, _ := s.Open(ctx, "about:blank")
	s.Wait()

	require.NoError(t, s.Cycle(ctx, 1))
	active, _ := s.Active(ctx)
	assert.Equal(t, a.ID, active.ID)

	require.NoError(t, s.Close(ctx, a.ID))
	active, _ = s.Active(ctx)
	assert.Equal(t, b.ID, active.ID)
	_, err := s.Get(ctx, a.ID)
	require.ErrorIs(t, err, ports.ErrTabNotFound)

	assert.Equal(t, []event{
		{"activated", a.ID},
		{"activated", b.ID},
		{"activated", a.ID},
		{"removed", a.ID},
		{"activated", b.ID},
	}, bg.events)
	require.ErrorIs(t, s.Close(ctx, a.ID), ports.ErrTabNotFound)
}

func TestSessionRuntimeQueue(t *testing.T) {
	s := newSession(t, WithAutoInject(true))
	bg := &recordingBackground{}
	s.SetBackground(bg)
	ctx := context.Background()

	tab, _ := s.Open(ctx, "https://links.test/")
	s.Wait()
	c := s.Controller(tab.ID)
	require.NotNil(t, c)

	c.Arm(protocol.InitiateSelection{Mode: protocol.ModeOpen, TabLimit: 5})
	c.Disarm()
	assert.Empty(t, bg.messages, "delivered before flush")

	n, err := s.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, bg.messages, 1)
	assert.Equal(t, protocol.SelectionDeactivated{}, bg.messages[0])
	assert.Equal(t, tab.ID, bg.senders[0].ID)
	n, _ = s.Flush(ctx)
	assert.Equal(t, 0, n)
}

func TestSessionFlushReportsFirstError(t *testing.T) {
	s := newSession(t, WithAutoInject(true))
	boom := errors.New("history save failed")
	bg := &recordingBackground{err: boom}
	s.SetBackground(bg)
	ctx := context.Background()

	tab, _ := s.Open(ctx, "https://links.test/")
	s.Wait()
	c := s.Controller(tab.ID)
	require.NotNil(t, c)
	c.Arm(protocol.InitiateSelection{Mode: protocol.ModeOpen, TabLimit: 5})
	c.Disarm()
	c.Arm(protocol.InitiateSelection{Mode: protocol.ModeOpen, TabLimit: 5})
	c.Disarm()

	n, err := s.Flush(ctx)
	assert.Equal(t, 2, n, "keeps delivering after a failure")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), string(protocol.TypeSelectionDeactivated))
}

func TestSessionConcurrentCloseOfSameTab(t *testing.T) {
	s := newSession(t, WithAutoInject(true))
	s.SetBackground(&recordingBackground{})
	ctx := context.Background()

	a, _ := s.Open(ctx, "https://links.test/")
	s.Open(ctx, "about:blank")
	s.Wait()
	s.Controller(a.ID).Arm(protocol.InitiateSelection{Mode: protocol.ModeOpen, TabLimit: 5})

	errs := make(chan error, 8)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Close(ctx, a.ID)
		}()
	}
	wg.Wait()
	close(errs)

	closed := 0
	for err := range errs {
		if err == nil {
			closed++
			continue
		}
		require.ErrorIs(t, err, ports.ErrTabNotFound)
	}
	assert.Equal(t, 1, closed)
	assert.Len(t, s.Tabs(), 1)
}

func TestSessionNavigateEndsSelection(t *testing.T) {
	s := newSession(t, WithAutoInject(true))
	bg := &recordingBackground{}
	s.SetBackground(bg)
	ctx := context.Background()

	tab, _ := s.Open(ctx, "https://links.test/")
	s.Wait()
	old := s.Controller(tab.ID)
	old.Arm(protocol.InitiateSelection{Mode: protocol.ModeOpen, TabLimit: 5})

	require.NoError(t, s.Navigate(ctx, tab.ID, "about:blank"))
	s.Wait()
	assert.False(t, old.Active())
	assert.NotSame(t, old, s.Controller(tab.ID))

	_, err := s.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, []protocol.Request{protocol.SelectionDeactivated{}}, bg.messages)
}

func TestSessionSetViewport(t *testing.T) {
	s := newSession(t)
	tab, _ := s.Open(context.Background(), "https://links.test/")
	s.Wait()

	s.SetViewport(60, 4)
	assert.Equal(t, 4, s.Page(tab.ID).ViewHeight())
}

func TestMenuRefresh(t *testing.T) {
	m := NewMenu(map[string]string{orchestrator.CommandActivate: "a"})
	require.NoError(t, m.Refresh(context.Background(), true))
	assert.Equal(t, []MenuEntry{
		{ID: orchestrator.MenuActivate, Title: "Select links to open (a)"},
		{ID: orchestrator.MenuActivateCopy, Title: "Select links to copy"},
	}, m.Entries())

	require.NoError(t, m.Refresh(context.Background(), false))
	assert.Empty(t, m.Entries())
}

func TestSessionSelectionOpensLinksNextToParent(t *testing.T) {
	frames := &frame.Manual{}
	s := newSession(t, WithFrames(frames.Request), WithClipboard(&nullClipboard{}))
	store := history.NewMemoryStore()
	menu := NewMenu(nil)
	o := orchestrator.New(s, stubSettings{s: settings.Defaults()}, store, orchestrator.WithContextMenu(menu))
	s.SetBackground(o)
	ctx := context.Background()

	parent, _ := s.Open(ctx, "https://links.test/")
	tail, _ := s.Open(ctx, "about:blank")
	s.Wait()
	require.NoError(t, s.Activate(ctx, parent.ID))

	require.NoError(t, o.OnCommand(ctx, orchestrator.CommandActivate, parent))
	holder, ok := o.ActiveTab()
	require.True(t, ok)
	assert.Equal(t, parent.ID, holder)

	c := s.Controller(parent.ID)
	require.NotNil(t, c)
	c.MouseDown(selection.MouseEvent{Point: geometry.Point{X: 0, Y: 0}, Button: selection.ButtonPrimary, Buttons: selection.PrimaryMask})
	c.MouseMove(selection.MouseEvent{Point: geometry.Point{X: 12, Y: 1}, Buttons: selection.PrimaryMask})
	frames.Flush()
	c.MouseUp(selection.MouseEvent{Point: geometry.Point{X: 12, Y: 1}, Button: selection.ButtonPrimary})

	n, err := s.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	s.Wait()

	var urls []string
	for _, tab := range s.Tabs() {
		urls = append(urls, tab.URL)
	}
	assert.Equal(t, []string{"https://links.test/", "https://a.test/", "https://b.test/", tail.URL}, urls)

	_, held := o.ActiveTab()
	assert.False(t, held)

	saved, err := store.Load(ctx, history.KindLinks)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/", "https://b.test/"}, saved)
}
