// File: thread/mutex.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RecursiveLock: mutual exclusion with same-owner re-entrancy counting.

package thread

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/internal/concurrency"
)

var _ api.RecursiveLocker = (*RecursiveLock)(nil)

// RecursiveLock is a mutex the owning goroutine may lock again without
// deadlocking. The underlying mutex is held exactly while the owner's net
// Lock count is positive. The zero value is an unlocked lock.
//
// Unlocking from a goroutine that does not own the lock, including a double
// unlock, is a programming error: it is logged and panics with an *api.Error
// wrapping api.ErrLockMisuse.
type RecursiveLock struct {
	mu     sync.Mutex
	owner  atomic.Uint64 // goroutine id, 0 when unheld
	locked int           // hold count; only touched by the owner
}

// Lock acquires the lock, or bumps the hold count if the caller owns it.
// Every call identifies the caller by parsing its stack header once; Unlock,
// HoldCount and Held skip that on an unheld lock.
func (l *RecursiveLock) Lock() {
	gid := concurrency.GoroutineID()
	if l.owner.Load() == gid {
		l.locked++
		return
	}
	l.mu.Lock()
	l.owner.Store(gid)
	l.locked = 1
}

// TryLock is Lock without blocking; it reports whether the caller now holds the lock.
func (l *RecursiveLock) TryLock() bool {
	gid := concurrency.GoroutineID()
	if l.owner.Load() == gid {
		l.locked++
		return true
	}
	if !l.mu.TryLock() {
		return false
	}
	l.owner.Store(gid)
	l.locked = 1
	return true
}

// Unlock drops one hold; the mutex is released when the count reaches zero.
func (l *RecursiveLock) Unlock() {
	owner := l.owner.Load()
	if owner == 0 || owner != concurrency.GoroutineID() {
		lockMisuse("unlock of lock not held by caller", owner, concurrency.GoroutineID())
	}
	l.locked--
	if l.locked == 0 {
		l.owner.Store(0)
		l.mu.Unlock()
	}
}

// HoldCount returns the caller's hold count, 0 if the caller is not the owner.
func (l *RecursiveLock) HoldCount() int {
	if !l.Held() {
		return 0
	}
	return l.locked
}

// Held reports whether the calling goroutine owns the lock.
func (l *RecursiveLock) Held() bool {
	owner := l.owner.Load()
	return owner != 0 && owner == concurrency.GoroutineID()
}

// releaseAll gives up every hold of the owner and returns how many there were.
func (l *RecursiveLock) releaseAll() int {
	n := l.locked
	l.locked = 0
	l.owner.Store(0)
	l.mu.Unlock()
	return n
}

// reacquire blocks for the mutex and reinstates a saved hold count.
func (l *RecursiveLock) reacquire(gid uint64, n int) {
	l.mu.Lock()
	l.owner.Store(gid)
	l.locked = n
}

func lockMisuse(msg string, owner, caller uint64) {
	metrics.Add(MetricLockMisuse, 1)
	logger().Error(msg,
		zap.Uint64("owner", owner),
		zap.Uint64("caller", caller),
		zap.Stack("stack"),
	)
	panic(api.NewError(api.ErrCodeLockMisuse, msg).
		WithCause(api.ErrLockMisuse).
		WithContext("owner", owner).
		WithContext("caller", caller))
}
