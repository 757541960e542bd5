package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cristianoliveira/area-links/internal/classify"
	"github.com/cristianoliveira/area-links/internal/clipboard"
	"github.com/cristianoliveira/area-links/internal/frame"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/page"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRuntime struct {
	mu   sync.Mutex
	sent []protocol.Request
}

func (r *recordingRuntime) Send(req protocol.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, req)
}

func (r *recordingRuntime) Sent() []protocol.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Request(nil), r.sent...)
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteText(text string) error {
	f.text = text
	return f.err
}

func link(id int, href string, line, start int) page.Link {
	return page.Link{
		ID:         id,
		Href:       href,
		RawHref:    href,
		Spans:      []page.Span{{Line: line, Start: start, End: start + 5}},
		Visible:    true,
		HasContent: true,
	}
}

// testDoc holds [A, B] on line 1, [A, C] on line 2 and two links that are
// never candidates on line 3.
func testDoc() *page.Document {
	frag := link(4, "https://x.test/#frag", 3, 0)
	frag.RawHref = "#frag"
	hidden := link(5, "https://hidden.test/", 3, 10)
	hidden.Visible = false
	return &page.Document{
		Width: 40,
		Lines: make([]string, 30),
		Links: []page.Link{
			link(0, "https://a.test/", 1, 0),
			link(1, "https://b.test/", 1, 10),
			link(2, "https://a.test/", 2, 0),
			link(3, "https://c.test/", 2, 10),
			frag,
			hidden,
		},
	}
}

type harness struct {
	page    *page.Page
	runtime *recordingRuntime
	clip    *fakeClipboard
	frames  *frame.Manual
	ctrl    *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		page:    page.New(testDoc(), page.WithViewHeight(10)),
		runtime: &recordingRuntime{},
		clip:    &fakeClipboard{},
		frames:  &frame.Manual{},
	}
	h.ctrl = New(h.page, h.runtime, h.clip, WithFrames(h.frames.Request))
	return h
}

func openMsg() protocol.InitiateSelection {
	return protocol.InitiateSelection{
		Mode:                        protocol.ModeOpen,
		Style:                       "dashed-blue",
		HighlightStyle:              "underline",
		TabLimit:                    2,
		RemoveDuplicatesInSelection: true,
		CheckDuplicatesOnCopy:       true,
	}
}

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func (h *harness) drag(from, to geometry.Point) {
	h.ctrl.MouseDown(MouseEvent{Point: from, Button: ButtonPrimary, Buttons: PrimaryMask})
	h.ctrl.MouseMove(MouseEvent{Point: to, Buttons: PrimaryMask})
	h.frames.Flush()
}

func (h *harness) release(at geometry.Point) {
	h.ctrl.MouseUp(MouseEvent{Point: at, Button: ButtonPrimary})
}

func TestHandleMessage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.ctrl.HandleMessage(ctx, protocol.Ping{})
	require.NoError(t, err)
	assert.Equal(t, protocol.Pong{}, resp)

	resp, err = h.ctrl.HandleMessage(ctx, openMsg())
	require.NoError(t, err)
	assert.True(t, protocol.Succeeded(resp))
	assert.Equal(t, StateArmed, h.ctrl.State())

	for _, req := range []protocol.Request{
		protocol.OpenLinks{URLs: []string{"https://a.test/"}},
		protocol.SelectionDeactivated{},
		protocol.SaveCopyHistory{},
		protocol.TriggerSelectionFromPopup{},
		protocol.RefreshContextMenu{},
	} {
		_, err = h.ctrl.HandleMessage(ctx, req)
		require.ErrorIs(t, err, protocol.ErrUnsupported, req.Type())
	}

	resp, err = h.ctrl.HandleMessage(ctx, protocol.ResetSelection{})
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Equal(t, []protocol.Request{protocol.SelectionDeactivated{}}, h.runtime.Sent())

	_, err = h.ctrl.HandleMessage(ctx, protocol.ResetSelection{})
	require.NoError(t, err)
	assert.Len(t, h.runtime.Sent(), 1, "reset while idle sends nothing")
}

func TestArmPreparesPage(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())

	assert.Equal(t, ports.CursorCrosshair, h.page.Cursor())
	on, style := h.page.BodyMarker()
	assert.True(t, on)
	assert.Equal(t, "underline", style)
	assert.True(t, h.page.Capturing())
	mode, ok := h.ctrl.Mode()
	require.True(t, ok)
	assert.Equal(t, protocol.ModeOpen, mode)

	msg := openMsg()
	msg.Mode = protocol.ModeCopy
	msg.HighlightStyle = ""
	h.ctrl.Arm(msg)
	assert.Equal(t, ports.CursorCopy, h.page.Cursor())
	_, style = h.page.BodyMarker()
	assert.Equal(t, "classic-yellow", style)
}

func TestOpenSelectionClassifiesAndCommits(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())

	h.drag(pt(0, 0), pt(20, 4))
	require.Equal(t, StateDragging, h.ctrl.State())

	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(0))
	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(1))
	assert.Equal(t, classify.StatusDuplicate, h.page.Marker(2))
	assert.Equal(t, classify.StatusLimitExceeded, h.page.Marker(3))
	assert.Equal(t, classify.StatusUntouched, h.page.Marker(4))
	assert.Equal(t, classify.StatusUntouched, h.page.Marker(5))

	box, style, visible := h.page.SelectionBox()
	require.True(t, visible)
	assert.Equal(t, geometry.Rect{Left: 0, Top: 0, Right: 20, Bottom: 4}, box)
	assert.Equal(t, "dashed", style.Border)

	h.release(pt(20, 4))

	assert.Equal(t, []protocol.Request{
		protocol.OpenLinks{URLs: []string{"https://a.test/", "https://b.test/"}},
		protocol.SelectionDeactivated{},
	}, h.runtime.Sent())
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Empty(t, h.page.Markers())
	assert.Equal(t, ports.CursorDefault, h.page.Cursor())
	assert.False(t, h.page.Capturing())
	_, _, visible = h.page.SelectionBox()
	assert.False(t, visible)
}

func TestMovesCoalesceIntoOneFrame(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.ctrl.MouseDown(MouseEvent{Point: pt(0, 0), Button: ButtonPrimary, Buttons: PrimaryMask})

	for i := 1; i <= 5; i++ {
		h.ctrl.MouseMove(MouseEvent{Point: pt(float64(i*4), 4), Buttons: PrimaryMask})
	}
	assert.Equal(t, 1, h.frames.Len())
	h.frames.Flush()
	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(1))
}

func TestShrinkingRectangleClearsMarkers(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.drag(pt(0, 0), pt(20, 4))
	require.Equal(t, classify.StatusHighlighted, h.page.Marker(1))

	h.ctrl.MouseMove(MouseEvent{Point: pt(6, 2), Buttons: PrimaryMask})
	h.frames.Flush()

	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(0))
	assert.Equal(t, classify.StatusUntouched, h.page.Marker(1))
	assert.Equal(t, classify.StatusUntouched, h.page.Marker(2))
	assert.Equal(t, classify.StatusUntouched, h.page.Marker(3))
}

func TestSmallDragDoesNotCommit(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.drag(pt(1, 1), pt(4, 3))

	h.release(pt(4, 3))
	assert.Equal(t, []protocol.Request{protocol.SelectionDeactivated{}}, h.runtime.Sent())
	assert.Equal(t, StateIdle, h.ctrl.State())
}

func TestDragThresholdIsConfigurable(t *testing.T) {
	h := newHarness(t)
	h.ctrl = New(h.page, h.runtime, h.clip, WithFrames(h.frames.Request), WithDragThreshold(1))
	h.ctrl.Arm(openMsg())
	h.drag(pt(1, 1), pt(4, 3))

	h.release(pt(4, 3))
	require.Len(t, h.runtime.Sent(), 2)
	assert.Equal(t, protocol.OpenLinks{URLs: []string{"https://a.test/"}}, h.runtime.Sent()[0])
}

func TestMoveWithoutButtonReleases(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.drag(pt(0, 0), pt(20, 4))

	h.ctrl.MouseMove(MouseEvent{Point: pt(25, 5)})

	assert.Equal(t, StateIdle, h.ctrl.State())
	sent := h.runtime.Sent()
	require.Len(t, sent, 2)
	assert.IsType(t, protocol.OpenLinks{}, sent[0])
}

func TestCopySelection(t *testing.T) {
	h := newHarness(t)
	msg := openMsg()
	msg.Mode = protocol.ModeCopy
	msg.UseCopyHistory = true
	h.ctrl.Arm(msg)

	h.drag(pt(0, 0), pt(20, 4))
	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(3), "copy mode has no tab limit")

	h.release(pt(20, 4))

	urls := []string{"https://a.test/", "https://b.test/", "https://c.test/"}
	assert.Equal(t, "https://a.test/\nhttps://b.test/\nhttps://c.test/", h.clip.text)
	assert.Equal(t, []protocol.Request{
		protocol.SaveCopyHistory{URLs: urls},
		protocol.SelectionDeactivated{},
	}, h.runtime.Sent())
}

func TestCopyWithoutCopyHistorySendsNoSave(t *testing.T) {
	h := newHarness(t)
	msg := openMsg()
	msg.Mode = protocol.ModeCopy
	h.ctrl.Arm(msg)
	h.drag(pt(0, 0), pt(20, 4))
	h.release(pt(20, 4))

	assert.Equal(t, []protocol.Request{protocol.SelectionDeactivated{}}, h.runtime.Sent())
	assert.NotEmpty(t, h.clip.text)
}

func TestCopyErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		alert string
	}{
		{name: "permission denied", err: fmt.Errorf("%w: %w", clipboard.ErrPermission, clipboard.ErrUnavailable), alert: CopyPermissionMessage},
		{name: "no clipboard", err: fmt.Errorf("%w: system: exit status 1", clipboard.ErrUnavailable), alert: CopyUnavailableMessage},
		{name: "other failure", err: errors.New("boom"), alert: CopyFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.clip.err = tt.err
			msg := openMsg()
			msg.Mode = protocol.ModeCopy
			h.ctrl.Arm(msg)
			h.drag(pt(0, 0), pt(20, 4))
			h.release(pt(20, 4))

			assert.Equal(t, []string{tt.alert}, h.page.TakeAlerts())
			assert.Equal(t, StateIdle, h.ctrl.State())
		})
	}
}

func TestExclusionsMarkLinks(t *testing.T) {
	h := newHarness(t)
	msg := openMsg()
	msg.TabLimit = 15
	msg.ExcludedDomains = []string{"b.test"}
	h.ctrl.Arm(msg)
	h.drag(pt(0, 0), pt(20, 4))

	assert.Equal(t, classify.StatusExcluded, h.page.Marker(1))
	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(3))
}

func TestHistoryMarksDuplicates(t *testing.T) {
	h := newHarness(t)
	msg := openMsg()
	msg.TabLimit = 15
	msg.UseHistory = true
	msg.LinkHistory = []string{"https://c.test/"}
	h.ctrl.Arm(msg)
	h.drag(pt(0, 0), pt(20, 4))

	assert.Equal(t, classify.StatusDuplicate, h.page.Marker(3))
}

func TestRearmDoesNotReportDeactivation(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.drag(pt(0, 0), pt(20, 4))

	h.ctrl.Arm(openMsg())

	assert.Empty(t, h.runtime.Sent())
	assert.Equal(t, StateArmed, h.ctrl.State())
	assert.Empty(t, h.page.Markers())
}

func TestDisarmPaths(t *testing.T) {
	tests := []struct {
		name   string
		disarm func(c *Controller)
	}{
		{name: "escape", disarm: func(c *Controller) { c.KeyDown("esc") }},
		{name: "navigation", disarm: func(c *Controller) { c.Navigate() }},
		{name: "explicit", disarm: func(c *Controller) { c.Disarm() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.ctrl.Arm(openMsg())
			h.drag(pt(0, 0), pt(20, 4))

			tt.disarm(h.ctrl)

			assert.Equal(t, StateIdle, h.ctrl.State())
			assert.Equal(t, []protocol.Request{protocol.SelectionDeactivated{}}, h.runtime.Sent())
			assert.Empty(t, h.page.Markers())
		})
	}
}

func TestOtherKeysAndIdleDisarmAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.ctrl.KeyDown("a")
	assert.Equal(t, StateArmed, h.ctrl.State())

	h.ctrl.Disarm()
	h.ctrl.Navigate()
	assert.Len(t, h.runtime.Sent(), 1)
}

func TestStaleFrameAfterDisarmDoesNothing(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.ctrl.MouseDown(MouseEvent{Point: pt(0, 0), Button: ButtonPrimary, Buttons: PrimaryMask})
	h.ctrl.MouseMove(MouseEvent{Point: pt(20, 4), Buttons: PrimaryMask})
	require.Equal(t, 1, h.frames.Len())

	h.ctrl.Disarm()
	h.frames.Flush()

	assert.Empty(t, h.page.Markers())
	_, _, visible := h.page.SelectionBox()
	assert.False(t, visible)
}

func TestSecondaryButtonIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.ctrl.MouseDown(MouseEvent{Point: pt(0, 0), Button: ButtonSecondary})
	assert.Equal(t, StateArmed, h.ctrl.State())

	h.drag(pt(0, 0), pt(20, 4))
	h.ctrl.MouseUp(MouseEvent{Point: pt(20, 4), Button: ButtonSecondary})
	assert.Equal(t, StateDragging, h.ctrl.State())
}

func TestIdleControllerIgnoresPointer(t *testing.T) {
	h := newHarness(t)
	h.drag(pt(0, 0), pt(20, 4))
	h.release(pt(20, 4))

	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Empty(t, h.runtime.Sent())
	assert.Zero(t, h.frames.Len())
}

func TestScrollKeepsRectangleUnderPointer(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Arm(openMsg())
	h.drag(pt(0, 0), pt(20, 1.5))
	require.Equal(t, classify.StatusUntouched, h.page.Marker(3))

	require.True(t, h.page.ScrollBy(1))
	h.ctrl.Scroll()
	h.frames.Flush()

	box, _, _ := h.page.SelectionBox()
	assert.Equal(t, geometry.Rect{Left: 0, Top: 0, Right: 20, Bottom: 2.5}, box)
	assert.Equal(t, classify.StatusLimitExceeded, h.page.Marker(3))
}

func TestCandidatesUseDocumentSpace(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.page.ScrollBy(2))
	h.ctrl.Arm(openMsg())

	// Viewport row 0 is document line 2.
	h.drag(pt(0, 0), pt(20, 0.5))

	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(2))
	assert.Equal(t, classify.StatusHighlighted, h.page.Marker(3))
	assert.Equal(t, classify.StatusUntouched, h.page.Marker(0))
}
