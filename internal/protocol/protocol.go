// Package protocol defines the messages exchanged between the per-tab
// selection controller and the orchestrator.
//
// Requests are a closed set of variants. Handler has one method per variant
// and Dispatch switches over all of them. Both listeners implement every
// Handler method themselves, so a new variant does not compile until each
// side either serves it or rejects it with Reject.
package protocol

import (
	"context"
	"errors"
	"fmt"
)

// Type is the wire discriminator of a message.
type Type string

const (
	TypePing                      Type = "ping"
	TypePong                      Type = "pong"
	TypeInitiateSelection         Type = "initiateSelection"
	TypeInitiateSelectionCopy     Type = "initiateSelectionCopy"
	TypeResetSelection            Type = "resetSelection"
	TypeSelectionDeactivated      Type = "selectionDeactivated"
	TypeOpenLinks                 Type = "openLinks"
	TypeSaveCopyHistory           Type = "saveCopyHistory"
	TypeTriggerSelectionFromPopup Type = "triggerSelectionFromPopup"
	TypeRefreshContextMenu        Type = "refreshContextMenu"
	TypeAck                       Type = "ack"
)

var (
	// ErrUnknownType is returned for a message type outside the protocol.
	ErrUnknownType = errors.New("unknown message type")
	// ErrUnsupported is returned when a side receives a message meant for the other side.
	ErrUnsupported = errors.New("message not supported by this listener")
)

// Mode selects what a committed selection does.
type Mode int

const (
	ModeOpen Mode = iota
	ModeCopy
)

// String returns "open" or "copy".
func (m Mode) String() string {
	if m == ModeCopy {
		return "copy"
	}
	return "open"
}

// InitiateType returns the initiate message type for the mode.
func (m Mode) InitiateType() Type {
	if m == ModeCopy {
		return TypeInitiateSelectionCopy
	}
	return TypeInitiateSelection
}

// MarshalText encodes the mode as its initiate message type, which is how the
// popup names the mode on the wire.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.InitiateType()), nil
}

// UnmarshalText accepts an initiate message type or "open"/"copy".
func (m *Mode) UnmarshalText(text []byte) error {
	switch Type(text) {
	case TypeInitiateSelection, "open":
		*m = ModeOpen
	case TypeInitiateSelectionCopy, "copy":
		*m = ModeCopy
	default:
		return fmt.Errorf("protocol: invalid mode %q", text)
	}
	return nil
}

// Request is a message sent over the runtime or tab channel.
type Request interface {
	Type() Type
	isRequest()
}

// Response is a reply to a Request.
type Response interface {
	ResponseType() Type
	isResponse()
}

// Ping is a liveness probe.
type Ping struct{}

// InitiateSelection arms a selection session in the receiving tab.
type InitiateSelection struct {
	Mode Mode `json:"-"`

	Style             string `json:"style"`
	SelectionBoxStyle string `json:"selectionBoxStyle"`
	SelectionBoxColor string `json:"selectionBoxColor"`
	HighlightStyle    string `json:"highlightStyle"`
	TabLimit          int    `json:"tabLimit"`

	CheckDuplicatesOnCopy       bool `json:"checkDuplicatesOnCopy"`
	ApplyExclusionsOnCopy       bool `json:"applyExclusionsOnCopy"`
	UseHistory                  bool `json:"useHistory"`
	UseCopyHistory              bool `json:"useCopyHistory"`
	RemoveDuplicatesInSelection bool `json:"removeDuplicatesInSelection"`

	LinkHistory     []string `json:"linkHistory"`
	CopyHistory     []string `json:"copyHistory"`
	ExcludedDomains []string `json:"excludedDomains"`
	ExcludedWords   []string `json:"excludedWords"`
}

// ResetSelection cancels any session in the receiving tab.
type ResetSelection struct{}

// SelectionDeactivated tells the orchestrator the sender's session ended.
type SelectionDeactivated struct{}

// OpenLinks asks the orchestrator to open URLs in order.
type OpenLinks struct {
	URLs []string `json:"urls"`
}

// SaveCopyHistory asks the orchestrator to record copied URLs.
type SaveCopyHistory struct {
	URLs []string `json:"urls"`
}

// TriggerSelectionFromPopup starts a selection in the active tab.
type TriggerSelectionFromPopup struct {
	Mode Mode `json:"commandType"`
}

// RefreshContextMenu asks the orchestrator to rebuild its menu entries.
type RefreshContextMenu struct{}

func (Ping) Type() Type                      { return TypePing }
func (m InitiateSelection) Type() Type       { return m.Mode.InitiateType() }
func (ResetSelection) Type() Type            { return TypeResetSelection }
func (SelectionDeactivated) Type() Type      { return TypeSelectionDeactivated }
func (OpenLinks) Type() Type                 { return TypeOpenLinks }
func (SaveCopyHistory) Type() Type           { return TypeSaveCopyHistory }
func (TriggerSelectionFromPopup) Type() Type { return TypeTriggerSelectionFromPopup }
func (RefreshContextMenu) Type() Type        { return TypeRefreshContextMenu }

func (Ping) isRequest()                      {}
func (InitiateSelection) isRequest()         {}
func (ResetSelection) isRequest()            {}
func (SelectionDeactivated) isRequest()      {}
func (OpenLinks) isRequest()                 {}
func (SaveCopyHistory) isRequest()           {}
func (TriggerSelectionFromPopup) isRequest() {}
func (RefreshContextMenu) isRequest()        {}

// Pong answers Ping.
type Pong struct{}

// Ack answers InitiateSelection.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (Pong) ResponseType() Type { return TypePong }
func (Ack) ResponseType() Type  { return TypeAck }
func (Pong) isResponse()        {}
func (Ack) isResponse()         {}

// Succeeded reports whether resp is a successful Ack.
func Succeeded(resp Response) bool {
	ack, ok := resp.(Ack)
	return ok && ack.Success
}

// Handler receives every request variant. A listener answers the variants
// meant for the other side with Reject.
type Handler interface {
	Ping(ctx context.Context) (Response, error)
	InitiateSelection(ctx context.Context, req InitiateSelection) (Response, error)
	ResetSelection(ctx context.Context) (Response, error)
	SelectionDeactivated(ctx context.Context) (Response, error)
	OpenLinks(ctx context.Context, req OpenLinks) (Response, error)
	SaveCopyHistory(ctx context.Context, req SaveCopyHistory) (Response, error)
	TriggerSelectionFromPopup(ctx context.Context, req TriggerSelectionFromPopup) (Response, error)
	RefreshContextMenu(ctx context.Context) (Response, error)
}

// Dispatch routes req to the matching Handler method. Fire-and-forget
// messages yield a nil Response.
func Dispatch(ctx context.Context, h Handler, req Request) (Response, error) {
	switch r := req.(type) {
	case Ping:
		return h.Ping(ctx)
	case InitiateSelection:
		return h.InitiateSelection(ctx, r)
	case ResetSelection:
		return h.ResetSelection(ctx)
	case SelectionDeactivated:
		return h.SelectionDeactivated(ctx)
	case OpenLinks:
		return h.OpenLinks(ctx, r)
	case SaveCopyHistory:
		return h.SaveCopyHistory(ctx, r)
	case TriggerSelectionFromPopup:
		return h.TriggerSelectionFromPopup(ctx, r)
	case RefreshContextMenu:
		return h.RefreshContextMenu(ctx)
	case nil:
		return nil, fmt.Errorf("protocol: nil request: %w", ErrUnknownType)
	default:
		return nil, fmt.Errorf("protocol: %T: %w", req, ErrUnknownType)
	}
}

// Reject is the error a listener returns for a message meant for the other
// side.
func Reject(t Type) error {
	return fmt.Errorf("protocol: %s: %w", t, ErrUnsupported)
}
