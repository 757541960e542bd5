// Package frame coalesces bursts of input events into at most one unit of
// work per frame.
package frame

import (
	"sync"
	"time"
)

// DefaultInterval approximates one display refresh.
const DefaultInterval = 16 * time.Millisecond

// Requester arranges for fn to run once at the next frame boundary.
type Requester func(fn func())

// After returns a Requester backed by time.AfterFunc.
func After(d time.Duration) Requester {
	return func(fn func()) {
		time.AfterFunc(d, fn)
	}
}

// Throttle is a single-in-flight scheduler: a pending flag plus one queued
// callback. Schedule while work is queued is a no-op; the callback runs once
// and clears the flag. The first trigger starts the frame and the frame
// boundary is the trailing flush.
type Throttle struct {
	mu      sync.Mutex
	request Requester
	work    func()
	pending bool
	gen     uint64
}

// NewThrottle returns a Throttle that runs work through request.
func NewThrottle(request Requester, work func()) *Throttle {
	return &Throttle{request: request, work: work}
}

// Schedule queues one run of the work. It reports false when a run is
// already pending.
func (t *Throttle) Schedule() bool {
	t.mu.Lock()
	if t.pending {
		t.mu.Unlock()
		return false
	}
	t.pending = true
	gen := t.gen
	t.mu.Unlock()

	t.request(func() { t.flush(gen) })
	return true
}

// Pending reports whether a run is queued.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Reset drops any queued run. A frame already requested still fires but
// does nothing.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
	t.gen++
}

func (t *Throttle) flush(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.pending {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.work()

	t.mu.Lock()
	if gen == t.gen {
		t.pending = false
	}
	t.mu.Unlock()
}

// Manual is a Requester that queues callbacks until Flush is called.
// It stands in for a display loop in tests and headless runs.
type Manual struct {
	mu    sync.Mutex
	queue []func()
}

// Request implements Requester.
func (m *Manual) Request(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// Len returns the number of queued callbacks.
func (m *Manual) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush runs the queued callbacks and reports how many ran.
func (m *Manual) Flush() int {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	m.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}
