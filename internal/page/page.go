package page

import (
	"sync"

	"github.com/cristianoliveira/area-links/internal/classify"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/ports"
)

// Page is the live view of a Document: scroll position, cursor, markers and
// the selection box. It is safe for concurrent use by the selection
// controller, its frame callbacks and the renderer.
type Page struct {
	mu  sync.RWMutex
	doc *Document

	viewHeight int
	scroll     geometry.Point

	cursor     ports.Cursor
	bodyMarker bool
	highlight  string
	capture    bool
	markers    map[int]classify.Status

	boxVisible bool
	box        geometry.Rect
	boxStyle   ports.BoxStyle

	alerts []string
	notify func()
}

// Option configures a Page.
type Option func(*Page)

// WithViewHeight sets the number of visible lines.
func WithViewHeight(h int) Option {
	return func(p *Page) { p.viewHeight = h }
}

// WithNotify registers a callback run after every visible state change.
func WithNotify(fn func()) Option {
	return func(p *Page) { p.notify = fn }
}

// New returns a page showing doc scrolled to the top.
func New(doc *Document, opts ...Option) *Page {
	if doc == nil {
		doc = &Document{Width: DefaultWidth}
	}
	p := &Page{doc: doc, markers: make(map[int]classify.Status)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ ports.Page = (*Page)(nil)

// Document returns the laid-out document.
func (p *Page) Document() *Document {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc
}

// Anchors returns every link with its rectangle relative to the viewport.
func (p *Page) Anchors() []ports.Anchor {
	p.mu.RLock()
	defer p.mu.RUnlock()

	offset := geometry.Point{X: -p.scroll.X, Y: -p.scroll.Y}
	anchors := make([]ports.Anchor, 0, len(p.doc.Links))
	for _, l := range p.doc.Links {
		rect := l.Rect()
		if len(l.Spans) > 0 {
			rect = rect.Translate(offset)
		}
		anchors = append(anchors, ports.Anchor{
			ID:         l.ID,
			Href:       l.Href,
			RawHref:    l.RawHref,
			Rect:       rect,
			Visible:    l.Visible,
			HasContent: l.HasContent,
		})
	}
	return anchors
}

// ScrollOffset returns the document position of the viewport's top-left cell.
func (p *Page) ScrollOffset() geometry.Point {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scroll
}

// ScrollBy moves the viewport by dy lines, clamped to the document, and
// reports whether it moved.
func (p *Page) ScrollBy(dy int) bool {
	p.mu.Lock()
	before := p.scroll.Y
	y := int(p.scroll.Y) + dy
	if maxY := p.doc.Height() - p.viewHeight; y > maxY {
		y = maxY
	}
	if y < 0 {
		y = 0
	}
	p.scroll.Y = float64(y)
	moved := p.scroll.Y != before
	p.mu.Unlock()

	if moved {
		p.changed()
	}
	return moved
}

// SetViewHeight updates the visible line count.
func (p *Page) SetViewHeight(h int) {
	p.mu.Lock()
	p.viewHeight = h
	p.mu.Unlock()
}

// ViewHeight returns the visible line count.
func (p *Page) ViewHeight() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewHeight
}

func (p *Page) SetCursor(c ports.Cursor) {
	p.mu.Lock()
	p.cursor = c
	p.mu.Unlock()
	p.changed()
}

// Cursor returns the pointer shape.
func (p *Page) Cursor() ports.Cursor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cursor
}

func (p *Page) SetBodyMarker(on bool, highlightStyle string) {
	p.mu.Lock()
	p.bodyMarker = on
	if on {
		p.highlight = highlightStyle
	} else {
		p.highlight = ""
	}
	p.mu.Unlock()
	p.changed()
}

// BodyMarker reports whether a selection is armed and its highlight style.
func (p *Page) BodyMarker() (bool, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bodyMarker, p.highlight
}

func (p *Page) SetCapture(on bool) {
	p.mu.Lock()
	p.capture = on
	p.mu.Unlock()
}

// Capturing reports whether the selection overlay takes page input.
func (p *Page) Capturing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.capture
}

func (p *Page) SetMarker(anchorID int, status classify.Status) {
	p.mu.Lock()
	if status == classify.StatusUntouched {
		delete(p.markers, anchorID)
	} else {
		p.markers[anchorID] = status
	}
	p.mu.Unlock()
	p.changed()
}

// Marker returns the status shown on the anchor.
func (p *Page) Marker(anchorID int) classify.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.markers[anchorID]
}

// Markers returns a copy of every non-untouched marker.
func (p *Page) Markers() map[int]classify.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[int]classify.Status, len(p.markers))
	for id, s := range p.markers {
		out[id] = s
	}
	return out
}

func (p *Page) ShowSelectionBox(rect geometry.Rect, style ports.BoxStyle) {
	p.mu.Lock()
	p.boxVisible = true
	p.box = rect
	p.boxStyle = style
	p.mu.Unlock()
	p.changed()
}

func (p *Page) HideSelectionBox() {
	p.mu.Lock()
	p.boxVisible = false
	p.box = geometry.Rect{}
	p.mu.Unlock()
	p.changed()
}

// SelectionBox returns the drawn rectangle in document space.
func (p *Page) SelectionBox() (geometry.Rect, ports.BoxStyle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.box, p.boxStyle, p.boxVisible
}

func (p *Page) Alert(msg string) {
	p.mu.Lock()
	p.alerts = append(p.alerts, msg)
	p.mu.Unlock()
	p.changed()
}

// TakeAlerts returns and clears pending alerts.
func (p *Page) TakeAlerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	alerts := p.alerts
	p.alerts = nil
	return alerts
}

func (p *Page) changed() {
	if p.notify != nil {
		p.notify()
	}
}
