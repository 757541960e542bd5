package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Envelope carries a request with a correlation id.
type Envelope struct {
	ID      string
	Request Request
}

// NewEnvelope wraps req with a fresh id.
func NewEnvelope(req Request) Envelope {
	return Envelope{ID: uuid.NewString(), Request: req}
}

type header struct {
	Type Type   `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Encode returns the wire form of env: the request fields flattened next to
// "type" and "id".
func Encode(env Envelope) ([]byte, error) {
	if env.Request == nil {
		return nil, fmt.Errorf("protocol: encode: nil request: %w", ErrUnknownType)
	}
	return flatten(header{Type: env.Request.Type(), ID: env.ID}, env.Request)
}

// Decode parses the wire form produced by Encode.
func Decode(data []byte) (Envelope, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return Envelope{}, fmt.Errorf("protocol: decode header: %w", err)
	}

	var req Request
	var err error
	switch h.Type {
	case TypePing:
		req = Ping{}
	case TypeInitiateSelection, TypeInitiateSelectionCopy:
		var m InitiateSelection
		err = json.Unmarshal(data, &m)
		if h.Type == TypeInitiateSelectionCopy {
			m.Mode = ModeCopy
		}
		req = m
	case TypeResetSelection:
		req = ResetSelection{}
	case TypeSelectionDeactivated:
		req = SelectionDeactivated{}
	case TypeOpenLinks:
		var m OpenLinks
		err = json.Unmarshal(data, &m)
		req = m
	case TypeSaveCopyHistory:
		var m SaveCopyHistory
		err = json.Unmarshal(data, &m)
		req = m
	case TypeTriggerSelectionFromPopup:
		var m TriggerSelectionFromPopup
		err = json.Unmarshal(data, &m)
		req = m
	case TypeRefreshContextMenu:
		req = RefreshContextMenu{}
	default:
		return Envelope{}, fmt.Errorf("protocol: decode %q: %w", h.Type, ErrUnknownType)
	}
	if err != nil {
		return Envelope{}, fmt.Errorf("protocol: decode %s: %w", h.Type, err)
	}
	return Envelope{ID: h.ID, Request: req}, nil
}

// EncodeResponse returns the wire form of resp. Pong is {"type":"pong"} and
// Ack is {"success":...}.
func EncodeResponse(resp Response) ([]byte, error) {
	switch r := resp.(type) {
	case Pong:
		return json.Marshal(header{Type: TypePong})
	case Ack:
		return json.Marshal(r)
	default:
		return nil, fmt.Errorf("protocol: encode response %T: %w", resp, ErrUnknownType)
	}
}

// DecodeResponse parses a response produced by EncodeResponse.
func DecodeResponse(data []byte) (Response, error) {
	var probe struct {
		Type    Type  `json:"type"`
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("protocol: decode response: %w", err)
	}
	switch {
	case probe.Type == TypePong:
		return Pong{}, nil
	case probe.Success != nil:
		var ack Ack
		if err := json.Unmarshal(data, &ack); err != nil {
			return nil, fmt.Errorf("protocol: decode ack: %w", err)
		}
		return ack, nil
	default:
		return nil, fmt.Errorf("protocol: decode response: %w", ErrUnknownType)
	}
}

// Clone round-trips req through the wire form so the receiver shares no
// memory with the sender.
func Clone(req Request) (Request, error) {
	data, err := Encode(Envelope{Request: req})
	if err != nil {
		return nil, err
	}
	env, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return env.Request, nil
}

func flatten(h header, body any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", h.Type, err)
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", h.Type, err)
	}
	fields["type"], _ = json.Marshal(h.Type)
	if h.ID != "" {
		fields["id"], _ = json.Marshal(h.ID)
	}
	return json.Marshal(fields)
}
