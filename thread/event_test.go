// File: thread/event_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSignalBeforeWait(t *testing.T) {
	e := NewEvent()
	e.Signal()
	e.Signal()
	assert.True(t, e.Wait(10))
	assert.False(t, e.Wait(10), "signal consumed by first wait")
}

func TestEventWaitTimesOut(t *testing.T) {
	var e Event
	start := time.Now()
	assert.False(t, e.Wait(30))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestEventSignalWakesWaiter(t *testing.T) {
	e := NewEvent()
	got := make(chan bool, 1)
	go func() { got <- e.Wait(0) }()

	time.Sleep(10 * time.Millisecond)
	e.Signal()
	select {
	case r := <-got:
		assert.True(t, r)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestEventSignalConsumedOnce(t *testing.T) {
	e := NewEvent()
	const n = 4
	var (
		wg       sync.WaitGroup
		consumed atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.Wait(150) {
				consumed.Add(1)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	e.Signal()
	wg.Wait()
	assert.Equal(t, int32(1), consumed.Load())
}

func TestEventClose(t *testing.T) {
	e := NewEvent()
	got := make(chan bool, 1)
	go func() { got <- e.Wait(0) }()
	time.Sleep(10 * time.Millisecond)
	e.Close()
	e.Close()
	select {
	case r := <-got:
		assert.False(t, r)
	case <-time.After(time.Second):
		t.Fatal("Close did not release the waiter")
	}
	assert.False(t, e.Wait(0), "closed event never blocks")
}

func TestSleepMsFloor(t *testing.T) {
	start := time.Now()
	SleepMs(0)
	assert.GreaterOrEqual(t, time.Since(start), MinSleepMs*time.Millisecond)

	start = time.Now()
	SleepMs(1)
	assert.GreaterOrEqual(t, time.Since(start), MinSleepMs*time.Millisecond)

	start = time.Now()
	SleepMs(25)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestTimeMs(t *testing.T) {
	unset := NewTimeMs(-1)
	assert.True(t, unset.TimedOut())
	assert.Greater(t, unset.Elapsed(), time.Duration(0))

	tm := NewTimeMs(40)
	assert.False(t, tm.TimedOut())
	assert.Less(t, tm.Elapsed(), time.Duration(0))
	require.Eventually(t, tm.TimedOut, time.Second, pollEvery)
	assert.GreaterOrEqual(t, tm.Elapsed(), time.Duration(0))

	tm.Set(0)
	assert.True(t, tm.TimedOut())

	a := NowMs()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, NowMs(), a+5)
}
