// File: thread/timems.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Millisecond timing helpers. Everything runs on the monotonic clock carried
// by time.Time, so wall-clock steps never shorten or stretch a deadline.

package thread

import "time"

var epoch = time.Now()

// absTime turns a relative timeout into an absolute deadline.
func absTime(timeoutMs int) time.Time {
	return time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// TimeMs is a millisecond stopwatch / timeout.
type TimeMs struct {
	begin time.Time
}

// NewTimeMs starts a timer expiring ms from now. A negative ms leaves the
// timer unset: it reports timed out and an elapsed time since process start.
func NewTimeMs(ms int) TimeMs {
	var t TimeMs
	if ms >= 0 {
		t.Set(ms)
	} else {
		t.begin = epoch
	}
	return t
}

// NowMs returns milliseconds on the monotonic clock since process start.
func NowMs() uint64 {
	return uint64(time.Since(epoch).Milliseconds())
}

// Set rearms the timer to expire ms from now.
func (t *TimeMs) Set(ms int) {
	t.begin = absTime(ms)
}

// TimedOut reports whether the timer's expiry has been reached.
func (t TimeMs) TimedOut() bool {
	return !time.Now().Before(t.begin)
}

// Elapsed returns the time since the expiry (negative while still pending).
func (t TimeMs) Elapsed() time.Duration {
	return time.Since(t.begin)
}
