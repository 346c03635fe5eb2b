//go:build !linux
// +build !linux

// File: internal/concurrency/thread_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback for platforms without per-thread ids or priority controls.

package concurrency

// ThreadIDsSupported reports whether OSThreadID returns kernel thread ids.
const ThreadIDsSupported = false

// OSThreadID returns 0: no kernel thread id is exposed here.
func OSThreadID() int { return 0 }

// SetThreadName is unsupported.
func SetThreadName(name string) error { return ErrUnsupported }

// SetNice is unsupported.
func SetNice(tid, nice int) error { return ErrUnsupported }

// SetIOPriority is unsupported.
func SetIOPriority(tid, level int) error { return ErrUnsupported }

// ThreadAlive cannot probe; callers fall back to their own exit signal.
func ThreadAlive(tid int) (bool, error) { return true, nil }
