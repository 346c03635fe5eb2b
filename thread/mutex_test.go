// File: thread/mutex_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/momentics/hioload-thread/api"
)

func TestRecursiveLockReentrancy(t *testing.T) {
	var l RecursiveLock
	l.Lock()
	l.Lock()
	l.Lock()
	assert.Equal(t, 3, l.HoldCount())
	assert.True(t, l.Held())

	l.Unlock()
	l.Unlock()
	assert.Equal(t, 1, l.HoldCount())

	acquired := make(chan bool, 1)
	go func() { acquired <- l.TryLock() }()
	assert.False(t, <-acquired, "other goroutine must not get a held lock")

	l.Unlock()
	assert.Zero(t, l.HoldCount())
	assert.False(t, l.Held())

	go func() {
		ok := l.TryLock()
		if ok {
			l.Unlock()
		}
		acquired <- ok
	}()
	assert.True(t, <-acquired)
}

func TestRecursiveLockExcludesOthers(t *testing.T) {
	var (
		l       RecursiveLock
		counter int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				l.Lock()
				l.Lock()
				counter++
				l.Unlock()
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8*500, counter)
}

func TestRecursiveLockBlocksUntilReleased(t *testing.T) {
	var l RecursiveLock
	l.Lock()
	l.Lock()

	got := make(chan struct{})
	go func() {
		l.Lock()
		close(got)
		l.Unlock()
	}()

	l.Unlock()
	select {
	case <-got:
		t.Fatal("lock acquired while still held once")
	case <-time.After(30 * time.Millisecond):
	}
	l.Unlock()
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}

func TestRecursiveLockForeignUnlockPanics(t *testing.T) {
	logs := observePackageLogger(t)
	before := counter(MetricLockMisuse)

	var l RecursiveLock
	l.Lock()
	defer l.Unlock()

	recovered := make(chan any, 1)
	go func() {
		defer func() { recovered <- recover() }()
		l.Unlock()
	}()

	r := <-recovered
	require.NotNil(t, r)
	err, ok := r.(error)
	require.True(t, ok)
	assert.True(t, errors.Is(err, api.ErrLockMisuse))
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrCodeLockMisuse, apiErr.Code)

	assert.Equal(t, before+1, counter(MetricLockMisuse))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, l.HoldCount(), "owner keeps its hold")
}

func TestRecursiveLockDoubleUnlockPanics(t *testing.T) {
	observePackageLogger(t)
	var l RecursiveLock
	l.Lock()
	l.Unlock()
	assert.Panics(t, func() { l.Unlock() })
}

func TestScopedLock(t *testing.T) {
	var l RecursiveLock

	func() {
		g := NewScopedLock(&l)
		defer g.Release()
		assert.Equal(t, 1, l.HoldCount())

		inner := NewScopedLock(&l)
		assert.Equal(t, 2, l.HoldCount())
		inner.Release()
		inner.Release()
		assert.Equal(t, 1, l.HoldCount())
	}()
	assert.Zero(t, l.HoldCount())

	var g ScopedLock
	assert.False(t, g.Lock(nil))
	g.Release()
	assert.True(t, g.Lock(&l))
	assert.False(t, g.Lock(&l), "guard binds once")
	assert.Equal(t, 1, l.HoldCount())
	g.Release()
	assert.Zero(t, l.HoldCount())
}

func TestRecursiveLockUnheldQueries(t *testing.T) {
	observePackageLogger(t)
	var l RecursiveLock
	assert.False(t, l.Held())
	assert.Zero(t, l.HoldCount())
	assert.Panics(t, func() { l.Unlock() }, "unlock of a never locked lock")
}

func BenchmarkRecursiveLockNested(b *testing.B) {
	var l RecursiveLock
	for i := 0; i < b.N; i++ {
		l.Lock()
		l.Lock()
		l.Unlock()
		l.Unlock()
	}
}

func BenchmarkRecursiveLockHeldQuery(b *testing.B) {
	var l RecursiveLock
	for i := 0; i < b.N; i++ {
		_ = l.Held()
	}
}
