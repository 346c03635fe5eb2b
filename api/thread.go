// File: api/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contracts shared by the threading primitives.

package api

import "sync"

// RecursiveLocker is a sync.Locker the owning goroutine may re-enter.
type RecursiveLocker interface {
	sync.Locker
	// HoldCount returns the caller's outstanding Lock count, 0 when the
	// caller is not the owner.
	HoldCount() int
}

// Signaler is a one-shot wakeup primitive.
type Signaler interface {
	Signal()
	// Wait blocks up to timeoutMs (0 = forever) and reports whether a
	// signal was consumed.
	Wait(timeoutMs int) bool
}

// Worker is the lifecycle of one managed background thread.
type Worker interface {
	GracefulShutdown
	Start() error
	Active() bool
	Running() bool
	Cancel(waitSeconds int)
	Description() string
}
