// Package selection runs the area-selection gesture inside one tab: it arms
// on request, tracks a drag, classifies the links under the rectangle once
// per frame and commits the result by copying or asking for the links to be
// opened.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cristianoliveira/area-links/internal/classify"
	"github.com/cristianoliveira/area-links/internal/clipboard"
	"github.com/cristianoliveira/area-links/internal/frame"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/ports"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/settings"
)

// Alerts shown when copying fails.
const (
	CopyPermissionMessage  = "Could not copy links: clipboard access was denied."
	CopyUnavailableMessage = "Could not copy links: no clipboard is available."
	CopyFailedMessage      = "Could not copy links."
)

// State is the controller's position in the gesture.
type State int

const (
	StateIdle State = iota
	// StateArmed waits for the primary button to go down.
	StateArmed
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Button identifies the mouse button of a press or release.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// PrimaryMask is the bit of MouseEvent.Buttons set while the primary button
// is held.
const PrimaryMask uint = 1

// MouseEvent is a pointer event in viewport coordinates.
type MouseEvent struct {
	Point   geometry.Point
	Button  Button
	Buttons uint
}

type session struct {
	mode      protocol.Mode
	opts      classify.Options
	box       ports.BoxStyle
	highlight string

	pointer geometry.Point // last pointer, viewport space
	start   geometry.Point
	current geometry.Point

	cands    []classify.Candidate
	anchors  []int
	statuses map[int]classify.Status // by candidate index
}

// Controller is the per-tab selection state machine. Entry points are
// serialized; frame callbacks may arrive from another goroutine.
type Controller struct {
	mu sync.Mutex

	page      ports.Page
	runtime   ports.Runtime
	clipboard ports.Clipboard
	logger    logging.Logger
	threshold float64
	throttle  *frame.Throttle

	state State
	sess  *session
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithFrames sets how classification passes are scheduled.
func WithFrames(r frame.Requester) Option {
	return func(c *Controller) { c.throttle = frame.NewThrottle(r, c.runFrame) }
}

// WithDragThreshold sets the size a rectangle must exceed on either side to
// commit.
func WithDragThreshold(t float64) Option {
	return func(c *Controller) { c.threshold = t }
}

// New returns an idle controller for a page.
func New(page ports.Page, runtime ports.Runtime, cb ports.Clipboard, opts ...Option) *Controller {
	c := &Controller{
		page:      page,
		runtime:   runtime,
		clipboard: cb,
		logger:    logging.NewNoop(),
		threshold: settings.DefaultDragThreshold,
	}
	c.throttle = frame.NewThrottle(frame.After(frame.DefaultInterval), c.runFrame)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether a session is armed or dragging.
func (c *Controller) Active() bool {
	return c.State() != StateIdle
}

// Mode returns the mode of the current session.
func (c *Controller) Mode() (protocol.Mode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return protocol.ModeOpen, false
	}
	return c.sess.mode, true
}

// HandleMessage is the tab-channel listener.
func (c *Controller) HandleMessage(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	return protocol.Dispatch(ctx, tabListener{c: c}, req)
}

// tabListener serves the tab channel. Runtime-channel messages are rejected.
type tabListener struct {
	c *Controller
}

var _ protocol.Handler = tabListener{}

func (tabListener) SelectionDeactivated(context.Context) (protocol.Response, error) {
	return nil, protocol.Reject(protocol.TypeSelectionDeactivated)
}

func (tabListener) OpenLinks(context.Context, protocol.OpenLinks) (protocol.Response, error) {
	return nil, protocol.Reject(protocol.TypeOpenLinks)
}

func (tabListener) SaveCopyHistory(context.Context, protocol.SaveCopyHistory) (protocol.Response, error) {
	return nil, protocol.Reject(protocol.TypeSaveCopyHistory)
}

func (tabListener) TriggerSelectionFromPopup(context.Context, protocol.TriggerSelectionFromPopup) (protocol.Response, error) {
	return nil, protocol.Reject(protocol.TypeTriggerSelectionFromPopup)
}

func (tabListener) RefreshContextMenu(context.Context) (protocol.Response, error) {
	return nil, protocol.Reject(protocol.TypeRefreshContextMenu)
}

func (l tabListener) Ping(context.Context) (protocol.Response, error) {
	return protocol.Pong{}, nil
}

func (l tabListener) ResetSelection(context.Context) (protocol.Response, error) {
	if l.c.Active() {
		l.c.Disarm()
	}
	return nil, nil
}

func (l tabListener) InitiateSelection(_ context.Context, req protocol.InitiateSelection) (protocol.Response, error) {
	l.c.Arm(req)
	return protocol.Ack{Success: true, Message: "Selection initiated"}, nil
}

// Arm starts a session from the initiate payload. An active session is
// replaced without reporting its deactivation.
func (c *Controller) Arm(msg protocol.InitiateSelection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		c.clearLocked()
	}

	s := &session{
		mode:      msg.Mode,
		box:       boxStyle(msg),
		highlight: msg.HighlightStyle,
		statuses:  make(map[int]classify.Status),
		opts: classify.Options{
			CopyMode:                    msg.Mode == protocol.ModeCopy,
			TabLimit:                    msg.TabLimit,
			RemoveDuplicatesInSelection: msg.RemoveDuplicatesInSelection,
			CheckDuplicatesOnCopy:       msg.CheckDuplicatesOnCopy,
			ApplyExclusionsOnCopy:       msg.ApplyExclusionsOnCopy,
			UseHistory:                  msg.UseHistory,
			UseCopyHistory:              msg.UseCopyHistory,
			LinkHistory:                 classify.NewSet(msg.LinkHistory),
			CopyHistory:                 classify.NewSet(msg.CopyHistory),
			Exclusions:                  classify.NewExclusions(msg.ExcludedDomains, msg.ExcludedWords),
		},
	}
	if s.highlight == "" {
		s.highlight = settings.DefaultHighlightStyle
	}
	c.sess = s
	c.state = StateArmed

	if s.opts.CopyMode {
		c.page.SetCursor(ports.CursorCopy)
	} else {
		c.page.SetCursor(ports.CursorCrosshair)
	}
	c.page.SetBodyMarker(true, s.highlight)
	c.page.SetCapture(true)
	c.logger.Debug("selection armed", "mode", s.mode.String(), "tab_limit", s.opts.TabLimit)
}

func boxStyle(msg protocol.InitiateSelection) ports.BoxStyle {
	if msg.SelectionBoxStyle != "" {
		color := msg.SelectionBoxColor
		if color == "" {
			color = settings.DefaultSelectionBoxColor
		}
		return ports.BoxStyle{Name: msg.SelectionBoxStyle, Border: msg.SelectionBoxStyle, Color: color}
	}
	legacy, ok := settings.LegacyStyle(msg.Style)
	if !ok {
		legacy, _ = settings.LegacyStyle(settings.DefaultSelectionStyle)
	}
	return ports.BoxStyle{Name: msg.Style, Border: legacy.Border, Color: legacy.Color}
}

// MouseDown starts a drag on the primary button and captures the link
// geometry for the whole gesture.
func (c *Controller) MouseDown(ev MouseEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateArmed || ev.Button != ButtonPrimary {
		return
	}
	s := c.sess
	scroll := c.page.ScrollOffset()
	s.pointer = ev.Point
	s.start = ev.Point.Add(scroll)
	s.current = s.start
	s.cands, s.anchors = scanAnchors(c.page.Anchors(), scroll)
	c.state = StateDragging

	c.page.ShowSelectionBox(geometry.RectFromPoints(s.start, s.current), s.box)
	c.logger.Debug("selection drag started", "candidates", len(s.cands))
}

func scanAnchors(anchors []ports.Anchor, scroll geometry.Point) ([]classify.Candidate, []int) {
	cands := make([]classify.Candidate, 0, len(anchors))
	ids := make([]int, 0, len(anchors))
	for _, a := range anchors {
		if !validAnchor(a) {
			continue
		}
		cands = append(cands, classify.NewCandidate(a.Href, a.Rect.Translate(scroll)))
		ids = append(ids, a.ID)
	}
	return cands, ids
}

func validAnchor(a ports.Anchor) bool {
	href := strings.TrimSpace(a.Href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.TrimSpace(a.RawHref), "#") {
		return false
	}
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return false
	}
	if a.Rect.Width() == 0 || a.Rect.Height() == 0 {
		return false
	}
	return a.Visible && a.HasContent
}

// MouseMove follows the pointer. A move without the primary button held
// ends the drag as a release would.
func (c *Controller) MouseMove(ev MouseEvent) {
	c.mu.Lock()
	if c.state != StateDragging {
		c.mu.Unlock()
		return
	}
	if ev.Buttons&PrimaryMask == 0 {
		c.mu.Unlock()
		c.MouseUp(MouseEvent{Point: ev.Point, Button: ButtonPrimary})
		return
	}
	c.sess.pointer = ev.Point
	c.sess.current = ev.Point.Add(c.page.ScrollOffset())
	c.throttle.Schedule()
	c.mu.Unlock()
}

// Scroll keeps the rectangle anchored to the pointer while the page moves
// under it.
func (c *Controller) Scroll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDragging {
		return
	}
	c.sess.current = c.sess.pointer.Add(c.page.ScrollOffset())
	c.throttle.Schedule()
}

// runFrame is the scheduled classification pass.
func (c *Controller) runFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDragging {
		return
	}
	rect := geometry.RectFromPoints(c.sess.start, c.sess.current)
	c.page.ShowSelectionBox(rect, c.sess.box)
	c.applyLocked(classify.Classify(c.sess.cands, rect, c.sess.opts))
}

// applyLocked updates page markers to match results. Candidates missing
// from results have left the rectangle and lose every marker.
func (c *Controller) applyLocked(results []classify.Result) {
	s := c.sess
	next := make(map[int]classify.Status, len(results))
	for _, r := range results {
		next[r.Index] = r.Status
	}
	for i, prev := range s.statuses {
		if _, ok := next[i]; !ok && prev != classify.StatusUntouched {
			c.page.SetMarker(s.anchors[i], classify.StatusUntouched)
		}
	}
	for _, r := range results {
		if s.statuses[r.Index] != r.Status {
			c.page.SetMarker(s.anchors[r.Index], r.Status)
		}
	}
	s.statuses = next
}

// MouseUp commits the gesture when the rectangle exceeds the drag threshold
// and always ends the session.
func (c *Controller) MouseUp(ev MouseEvent) {
	if ev.Button != ButtonPrimary {
		return
	}

	c.mu.Lock()
	if c.state != StateDragging {
		c.mu.Unlock()
		return
	}
	s := c.sess
	rect := geometry.RectFromPoints(s.start, s.current)
	var urls []string
	if rect.ExceedsThreshold(c.threshold) {
		urls = classify.HighlightedURLs(s.cands, classify.Classify(s.cands, rect, s.opts))
	}
	mode, opts := s.mode, s.opts
	c.clearLocked()
	c.mu.Unlock()

	if len(urls) > 0 {
		if mode == protocol.ModeCopy {
			if opts.CheckDuplicatesOnCopy {
				urls = unique(urls)
			}
			c.copyLinks(urls, opts.UseCopyHistory)
		} else {
			c.runtime.Send(protocol.OpenLinks{URLs: urls})
		}
	}
	c.runtime.Send(protocol.SelectionDeactivated{})
}

func (c *Controller) copyLinks(urls []string, useCopyHistory bool) {
	if useCopyHistory {
		c.runtime.Send(protocol.SaveCopyHistory{URLs: urls})
	}
	err := c.clipboard.WriteText(strings.Join(urls, "\n"))
	switch {
	case err == nil:
		c.logger.Debug("links copied", "count", len(urls))
	case errors.Is(err, clipboard.ErrPermission):
		c.logger.Error("failed to copy links", "error", fmt.Sprint(err))
		c.page.Alert(CopyPermissionMessage)
	case errors.Is(err, clipboard.ErrUnavailable):
		c.logger.Error("failed to copy links", "error", fmt.Sprint(err))
		c.page.Alert(CopyUnavailableMessage)
	default:
		c.logger.Error("failed to copy links", "error", fmt.Sprint(err))
		c.page.Alert(CopyFailedMessage)
	}
}

func unique(urls []string) []string {
	seen := make(classify.Set, len(urls))
	out := urls[:0:0]
	for _, u := range urls {
		if seen.Has(u) {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// KeyDown disarms on escape.
func (c *Controller) KeyDown(key string) {
	switch strings.ToLower(key) {
	case "esc", "escape":
		c.Disarm()
	}
}

// Navigate disarms when the page navigates within history, changes its hash
// or is hidden.
func (c *Controller) Navigate() {
	c.Disarm()
}

// Disarm ends any session and reports the deactivation when one was active.
func (c *Controller) Disarm() {
	c.mu.Lock()
	wasActive := c.state != StateIdle
	c.clearLocked()
	c.mu.Unlock()

	if wasActive {
		c.runtime.Send(protocol.SelectionDeactivated{})
	}
}

// clearLocked restores the page and drops all session state.
func (c *Controller) clearLocked() {
	c.throttle.Reset()
	c.page.HideSelectionBox()
	c.page.SetCapture(false)
	if s := c.sess; s != nil {
		for i, st := range s.statuses {
			if st != classify.StatusUntouched {
				c.page.SetMarker(s.anchors[i], classify.StatusUntouched)
			}
		}
	}
	c.page.SetBodyMarker(false, "")
	c.page.SetCursor(ports.CursorDefault)
	c.sess = nil
	c.state = StateIdle
}
