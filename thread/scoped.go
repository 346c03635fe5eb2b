// File: thread/scoped.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

// ScopedLock ties one acquisition of a RecursiveLock to a lexical scope:
//
//	g := thread.NewScopedLock(&mu)
//	defer g.Release()
type ScopedLock struct {
	lock   *RecursiveLock
	locked bool
}

// NewScopedLock returns a guard that has already called Lock(l).
func NewScopedLock(l *RecursiveLock) *ScopedLock {
	g := &ScopedLock{}
	g.Lock(l)
	return g
}

// Lock binds the guard to l and acquires it. It does nothing and returns
// false when l is nil or the guard is already bound.
func (g *ScopedLock) Lock(l *RecursiveLock) bool {
	if l == nil || g.lock != nil {
		return false
	}
	g.lock = l
	l.Lock()
	g.locked = true
	return true
}

// Release unlocks iff this guard performed the acquire. Safe to call twice.
func (g *ScopedLock) Release() {
	if g.lock != nil && g.locked {
		g.locked = false
		g.lock.Unlock()
	}
}
