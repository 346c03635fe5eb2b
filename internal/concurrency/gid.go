// File: internal/concurrency/gid.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "runtime"

// GoroutineID returns the current goroutine's ID, parsed from the header of
// its own stack trace ("goroutine 42 [running]:"). Never 0 for a live
// goroutine, so 0 is free to mean "no owner".
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
