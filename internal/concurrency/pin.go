// File: internal/concurrency/pin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-generic entry points for binding a goroutine to its OS thread.

package concurrency

import (
	"errors"
	"runtime"
)

// ErrUnsupported is returned by hints the platform cannot apply.
var ErrUnsupported = errors.New("not supported on this platform")

// PinCurrentThread wires the calling goroutine to its OS thread and returns
// that thread's kernel id (0 where the platform has no such notion).
//
// The goroutine is never unpinned by this package: a goroutine that exits
// while still locked takes its OS thread down with it, so priority changes
// made on a managed thread never leak back into the runtime's thread pool.
func PinCurrentThread() int {
	runtime.LockOSThread()
	return OSThreadID()
}
