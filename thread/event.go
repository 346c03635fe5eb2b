// File: thread/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event: a one-shot signal consumed by the first Wait that observes it.

package thread

import (
	"sync"
	"time"

	"github.com/momentics/hioload-thread/api"
)

// MinSleepMs is the floor SleepMs applies; shorter timed waits degenerate
// into busy waiting on some platforms.
const MinSleepMs = 3

var _ api.Signaler = (*Event)(nil)

// Event is a flag plus wait. Signal sets it and wakes every waiter; the first
// Wait that observes it clears it again. The zero value is unsignaled and
// ready to use.
type Event struct {
	mu       sync.Mutex
	signaled bool
	closed   bool
	wake     chan struct{} // closed and replaced on every broadcast
}

// NewEvent returns an unsignaled event.
func NewEvent() *Event {
	return &Event{wake: make(chan struct{})}
}

// SleepMs blocks for timeoutMs, but never less than MinSleepMs.
func SleepMs(timeoutMs int) {
	NewEvent().Wait(max(timeoutMs, MinSleepMs))
}

// Wait blocks until the event is signaled or timeoutMs passes (0 waits
// forever) and reports whether a signal was consumed. The event is always
// left unsignaled.
func (e *Event) Wait(timeoutMs int) bool {
	e.mu.Lock()
	if e.wake == nil {
		e.wake = make(chan struct{})
	}
	if !e.signaled && !e.closed {
		if timeoutMs != 0 {
			timer := time.NewTimer(time.Until(absTime(timeoutMs)))
			for !e.signaled && !e.closed {
				if !e.park(timer.C) {
					break
				}
			}
			timer.Stop()
		} else {
			e.park(nil)
		}
	}
	r := e.signaled
	e.signaled = false
	e.mu.Unlock()
	return r
}

// Signal sets the event and wakes all waiters.
func (e *Event) Signal() {
	e.mu.Lock()
	e.signaled = true
	e.broadcast()
	e.mu.Unlock()
}

// Close releases every parked waiter, which then reports false, and makes
// later waits return without blocking.
func (e *Event) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		e.broadcast()
	}
	e.mu.Unlock()
}

// park drops e.mu until the next broadcast or until timeout fires (a nil
// timeout never fires), then retakes it. It returns false on timeout.
func (e *Event) park(timeout <-chan time.Time) bool {
	ch := e.wake
	e.mu.Unlock()
	defer e.mu.Lock()
	select {
	case <-ch:
		return true
	case <-timeout:
		return false
	}
}

func (e *Event) broadcast() {
	if e.wake != nil {
		close(e.wake)
	}
	e.wake = make(chan struct{})
}
