//go:build linux
// +build linux

// File: thread/thread_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-thread/internal/concurrency"
)

func TestThreadRunsOnOwnNamedOSThread(t *testing.T) {
	tids := make(chan int, 1)
	release := make(chan struct{})
	th := New("named-worker-thread", func(ctx context.Context) {
		tids <- concurrency.OSThreadID()
		select {
		case <-release:
		case <-ctx.Done():
		}
	}, fastConfig())
	require.NoError(t, th.Start())
	defer th.Cancel(1)

	tid := <-tids
	require.Eventually(t, func() bool { return th.ThreadID() == tid }, time.Second, pollEvery)
	assert.NotEqual(t, unix.Gettid(), tid)

	comm, err := os.ReadFile(fmt.Sprintf("/proc/self/task/%d/comm", tid))
	require.NoError(t, err)
	assert.Equal(t, "named-worker-th", strings.TrimSpace(string(comm)))
	close(release)
}

func TestThreadLowPriority(t *testing.T) {
	observePackageLogger(t)

	nices := make(chan int, 1)
	th := New("low", func(ctx context.Context) {
		// getpriority reports 20-nice for the raw syscall.
		prio, err := unix.Getpriority(unix.PRIO_PROCESS, 0)
		if err != nil {
			nices <- -100
			return
		}
		nices <- 20 - prio
		<-ctx.Done()
	}, WithLowPriority(), fastConfig())
	require.NoError(t, th.Start())
	defer th.Cancel(1)

	assert.Equal(t, DefaultConfig().LowNice, <-nices)
}

func TestThreadSetPriorityWhileRunning(t *testing.T) {
	observePackageLogger(t)
	runs := make(chan struct{}, 1)
	th := New("renice", func(ctx context.Context) {
		runs <- struct{}{}
		<-ctx.Done()
	}, fastConfig())
	require.NoError(t, th.Start())
	defer th.Cancel(1)
	<-runs
	require.Eventually(t, func() bool { return th.ThreadID() != 0 }, time.Second, pollEvery)

	before := counter(MetricPriorityFailed)
	th.SetPriority(10)
	assert.Equal(t, before, counter(MetricPriorityFailed))

	prio, err := unix.Getpriority(unix.PRIO_PROCESS, th.ThreadID())
	require.NoError(t, err)
	assert.Equal(t, 10, 20-prio)
}

func TestThreadAliveProbeAfterExit(t *testing.T) {
	th := New("probe", func(context.Context) {}, fastConfig())
	require.NoError(t, th.Start())
	require.Eventually(t, func() bool { return !th.Active() }, time.Second, pollEvery)
	assert.Zero(t, th.ThreadID())
}
