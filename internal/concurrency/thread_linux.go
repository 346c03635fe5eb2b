//go:build linux
// +build linux

// File: internal/concurrency/thread_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux implementation of thread identity, naming, priority hints and the
// liveness probe.

package concurrency

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ThreadIDsSupported reports whether OSThreadID returns kernel thread ids.
const ThreadIDsSupported = true

const (
	ioprioWhoProcess = 1
	ioprioClassIdle  = 3
	ioprioClassShift = 13

	// maxThreadName is the kernel's TASK_COMM_LEN minus the terminating NUL.
	maxThreadName = 15
)

// OSThreadID returns the kernel id of the calling OS thread.
func OSThreadID() int {
	return unix.Gettid()
}

// SetThreadName names the calling OS thread, truncating to what the kernel keeps.
func SetThreadName(name string) error {
	if len(name) > maxThreadName {
		name = name[:maxThreadName]
	}
	p, err := unix.BytePtrFromString(name)
	if err != nil {
		return fmt.Errorf("thread name %q: %w", name, err)
	}
	if err := unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(p)), 0, 0, 0); err != nil {
		return fmt.Errorf("prctl(PR_SET_NAME): %w", err)
	}
	return nil
}

// SetNice sets the CPU scheduling niceness of OS thread tid (0 = caller).
func SetNice(tid, nice int) error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, tid, nice); err != nil {
		return fmt.Errorf("setpriority(%d, %d): %w", tid, nice, err)
	}
	return nil
}

// SetIOPriority moves OS thread tid (0 = caller) into the idle I/O class with
// the given level (0..7).
func SetIOPriority(tid, level int) error {
	prio := (level & 0xff) | (ioprioClassIdle << ioprioClassShift)
	if _, _, errno := unix.Syscall(unix.SYS_IOPRIO_SET, ioprioWhoProcess, uintptr(tid), uintptr(prio)); errno != 0 {
		return fmt.Errorf("ioprio_set(%d, %d): %w", tid, level, errno)
	}
	return nil
}

// ThreadAlive sends the null signal to OS thread tid of this process. A thread
// that no longer exists reports (false, nil); any other probe failure reports
// (false, err) so the caller can log it.
func ThreadAlive(tid int) (bool, error) {
	err := unix.Tgkill(unix.Getpid(), tid, 0)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.ESRCH):
		return false, nil
	default:
		return false, fmt.Errorf("tgkill(%d, 0): %w", tid, err)
	}
}
