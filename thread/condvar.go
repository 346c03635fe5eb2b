// File: thread/condvar.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CondVar: wait/broadcast bound to a RecursiveLock, with relative timeouts.

package thread

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-thread/internal/concurrency"
)

// compactSlack is how many abandoned entries the waiter queue tolerates
// beyond twice the live count before it is rebuilt.
const compactSlack = 32

// CondVar is a condition variable used together with a RecursiveLock. Wait
// fully releases the lock whatever the caller's nesting depth and restores
// that exact depth on wakeup. The zero value is ready to use.
type CondVar struct {
	mu      sync.Mutex
	waiters *queue.Queue // *waiter, FIFO
	live    int
	closed  bool
}

type waiter struct {
	ch   chan struct{}
	gone bool // timed out; skipped by Broadcast
}

// NewCondVar returns an empty condition variable.
func NewCondVar() *CondVar {
	return &CondVar{waiters: queue.New()}
}

// Wait releases l, blocks until Broadcast, then reacquires l with the hold
// count it had. Without any owner on l it returns immediately.
func (c *CondVar) Wait(l *RecursiveLock) {
	c.wait(l, time.Time{}, false)
}

// TimedWait is Wait bounded by timeoutMs. It returns false if the deadline
// passed without a wakeup. Callers must re-check their predicate either way.
func (c *CondVar) TimedWait(l *RecursiveLock, timeoutMs int) bool {
	return c.wait(l, absTime(timeoutMs), true)
}

// Broadcast wakes every goroutine currently waiting, in no particular order.
func (c *CondVar) Broadcast() {
	c.mu.Lock()
	c.wakeAll()
	c.mu.Unlock()
}

// Close wakes all waiters; later waits return at once as if woken.
func (c *CondVar) Close() {
	c.mu.Lock()
	c.closed = true
	c.wakeAll()
	c.mu.Unlock()
}

// Waiters returns how many goroutines are parked right now.
func (c *CondVar) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

func (c *CondVar) wait(l *RecursiveLock, deadline time.Time, timed bool) bool {
	gid := concurrency.GoroutineID()
	switch owner := l.owner.Load(); owner {
	case 0:
		return true
	case gid:
	default:
		lockMisuse("wait on lock held by another goroutine", owner, gid)
	}

	w := c.park()
	if w == nil {
		return true
	}
	n := l.releaseAll()
	defer l.reacquire(gid, n)

	if !timed {
		<-w.ch
		return true
	}
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-w.ch:
		return true
	case <-timer.C:
		return c.abandon(w)
	}
}

// park registers a waiter. It must happen before the caller's lock is
// released so a Broadcast issued right after cannot be missed.
func (c *CondVar) park() *waiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.waiters == nil {
		c.waiters = queue.New()
	}
	w := &waiter{ch: make(chan struct{})}
	c.waiters.Add(w)
	c.live++
	return w
}

// abandon retires a timed-out waiter. A Broadcast that won the race counts
// as a wakeup.
func (c *CondVar) abandon(w *waiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-w.ch:
		return true
	default:
	}
	w.gone = true
	c.live--
	if c.waiters.Length() > 2*c.live+compactSlack {
		q := queue.New()
		for c.waiters.Length() > 0 {
			if ww := c.waiters.Remove().(*waiter); !ww.gone {
				q.Add(ww)
			}
		}
		c.waiters = q
	}
	return false
}

func (c *CondVar) wakeAll() {
	if c.waiters == nil {
		return
	}
	for c.waiters.Length() > 0 {
		if w := c.waiters.Remove().(*waiter); !w.gone {
			close(w.ch)
		}
	}
	c.live = 0
}
