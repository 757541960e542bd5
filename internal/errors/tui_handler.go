package errors

import (
	"sync"
	"time"
)

// DefaultStatusTTL is how long a status message stays on screen.
const DefaultStatusTTL = 5 * time.Second

// Message is one status line.
type Message struct {
	Text      string
	Type      MessageType
	Timestamp time.Time
}

// TUIHandler keeps the latest message for the status line. Messages expire
// after the handler's TTL.
type TUIHandler struct {
	mu      sync.RWMutex
	latest  Message
	has     bool
	ttl     time.Duration
	now     func() time.Time
	onError func(msg Message)
}

// NewTUIHandler returns a handler calling onMessage for every message.
// onMessage may be nil.
func NewTUIHandler(onMessage func(msg Message)) *TUIHandler {
	return &TUIHandler{ttl: DefaultStatusTTL, now: time.Now, onError: onMessage}
}

// SetClock replaces the time source.
func (h *TUIHandler) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// SetTTL changes how long messages stay current. Zero keeps them until
// Clear.
func (h *TUIHandler) SetTTL(ttl time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ttl = ttl
}

func (h *TUIHandler) Error(msg string)   { h.add(msg, MessageTypeError) }
func (h *TUIHandler) Warning(msg string) { h.add(msg, MessageTypeWarning) }
func (h *TUIHandler) Info(msg string)    { h.add(msg, MessageTypeInfo) }
func (h *TUIHandler) Success(msg string) { h.add(msg, MessageTypeSuccess) }

func (h *TUIHandler) add(text string, t MessageType) {
	h.mu.Lock()
	msg := Message{Text: text, Type: t, Timestamp: h.now()}
	h.latest, h.has = msg, true
	cb := h.onError
	h.mu.Unlock()

	if cb != nil {
		cb(msg)
	}
}

// Current returns the latest message unless it expired.
func (h *TUIHandler) Current() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.has {
		return Message{}, false
	}
	if h.ttl > 0 && h.now().Sub(h.latest.Timestamp) >= h.ttl {
		return Message{}, false
	}
	return h.latest, true
}

// Clear drops the current message.
func (h *TUIHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest, h.has = Message{}, false
}
