// File: thread/mainthread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-thread/internal/concurrency"
)

var mainThreadID atomic.Uint64

// CurrentThreadID returns the calling goroutine's id.
func CurrentThreadID() uint64 {
	return concurrency.GoroutineID()
}

// SetMainThreadID registers the calling goroutine as the main thread. The
// first registration wins; repeating it from the same goroutine is a no-op,
// from any other goroutine it is logged and ignored.
func SetMainThreadID() {
	gid := concurrency.GoroutineID()
	if mainThreadID.CompareAndSwap(0, gid) {
		return
	}
	if cur := mainThreadID.Load(); cur != gid {
		logger().Error("attempt to set main thread id while it is already set",
			zap.Uint64("caller", gid),
			zap.Uint64("main", cur),
		)
	}
}

// MainThreadID returns the registered main goroutine id, 0 if none.
func MainThreadID() uint64 {
	return mainThreadID.Load()
}

// IsMainThread reports whether the caller is the registered main goroutine.
func IsMainThread() bool {
	id := mainThreadID.Load()
	return id != 0 && id == concurrency.GoroutineID()
}
