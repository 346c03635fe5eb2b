// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Operating-system glue for hioload-thread: goroutine and OS thread identity,
// OS thread pinning and naming, scheduling priority hints and the no-signal
// liveness probe. Linux implementations use golang.org/x/sys/unix; every other
// platform gets a stub that reports the hint as unsupported.
package concurrency
