// Package ports defines application boundary interfaces used by core services.
package ports

import (
	"context"
	"errors"

	"github.com/cristianoliveira/area-links/internal/classify"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/settings"
)

var (
	// ErrNoListener is returned when a tab has no content script to receive a message.
	ErrNoListener = errors.New("receiving end does not exist")
	// ErrTabNotFound is returned for a tab id that does not exist.
	ErrTabNotFound = errors.New("tab not found")
)

// Tab is a browser tab as seen by the orchestrator.
type Tab struct {
	ID       int
	WindowID string
	Index    int
	URL      string
	Title    string
	Active   bool
}

// CreateTabOptions configures a new tab. A nil Index appends at the end of
// the window.
type CreateTabOptions struct {
	URL      string
	Index    *int
	Active   bool
	WindowID string
}

// Tabs is the browser surface the orchestrator drives.
type Tabs interface {
	// Get returns the tab or ErrTabNotFound.
	Get(ctx context.Context, tabID int) (Tab, error)

	// Active returns the focused tab of the current window or ErrTabNotFound.
	Active(ctx context.Context) (Tab, error)

	// SendMessage delivers req to the tab's content script.
	// It returns ErrNoListener when nothing is injected in the tab.
	SendMessage(ctx context.Context, tabID int, req protocol.Request) (protocol.Response, error)

	// InsertCSS injects the selection stylesheet.
	InsertCSS(ctx context.Context, tabID int) error

	// ExecuteScript injects the selection content script.
	ExecuteScript(ctx context.Context, tabID int) error

	// Create opens a tab.
	Create(ctx context.Context, opts CreateTabOptions) (Tab, error)

	// CreateWindow opens a window holding one tab per URL.
	CreateWindow(ctx context.Context, urls []string, focused bool) error
}

// SettingsProvider resolves the settings snapshot.
type SettingsProvider interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// HistoryStore persists the history lists.
type HistoryStore interface {
	Load(ctx context.Context, kind history.Kind) ([]string, error)
	Save(ctx context.Context, kind history.Kind, urls []string) error
}

// ContextMenu rebuilds the selection entries of the page context menu.
// Refresh removes the entries and adds them back when show is true.
type ContextMenu interface {
	Refresh(ctx context.Context, show bool) error
}

// Listener receives tab-channel or runtime-channel messages.
type Listener interface {
	HandleMessage(ctx context.Context, req protocol.Request) (protocol.Response, error)
}

// Runtime is the content side's fire-and-forget channel to the orchestrator.
type Runtime interface {
	Send(req protocol.Request)
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// Cursor is the pointer shape shown over the page.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCrosshair
	CursorCopy
)

// Anchor is one hyperlink element of a page. Rect is in viewport space.
type Anchor struct {
	ID      int
	Href    string
	RawHref string
	Rect    geometry.Rect
	// Visible is false for hidden, display:none, visibility:hidden and
	// pointer-events:none elements.
	Visible bool
	// HasContent is false when the anchor has no text and no image.
	HasContent bool
}

// BoxStyle describes how the selection rectangle is drawn.
type BoxStyle struct {
	Name   string
	Border string
	Color  string
}

// Page is the document surface the selection controller reads and marks.
type Page interface {
	Anchors() []Anchor
	ScrollOffset() geometry.Point

	SetCursor(c Cursor)
	// SetBodyMarker toggles the marker used to sequence highlight transitions.
	SetBodyMarker(on bool, highlightStyle string)
	// SetCapture shows or hides the overlay that takes page input.
	SetCapture(on bool)
	// SetMarker shows status on the anchor; StatusUntouched clears every marker.
	SetMarker(anchorID int, status classify.Status)

	// ShowSelectionBox draws the selection rectangle given in document space.
	ShowSelectionBox(rect geometry.Rect, style BoxStyle)
	HideSelectionBox()

	// Alert surfaces a message to the user.
	Alert(msg string)
}
