// File: thread/helpers_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observePackageLogger routes the package logger into memory for the test.
func observePackageLogger(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := pkgLogger.Load()
	SetLogger(zap.New(core))
	t.Cleanup(func() { pkgLogger.Store(prev) })
	return logs
}

// counter reads one lifecycle counter.
func counter(key string) int64 {
	return metrics.Counter(key)
}

// fastConfig shortens every wait so lifecycle tests finish quickly.
func fastConfig() Option {
	cfg := DefaultConfig()
	cfg.StopTimeoutMs = 300
	cfg.StopSleepMs = 5
	cfg.CancelPollMs = 5
	cfg.ShutdownWaitSeconds = 1
	return WithConfig(cfg)
}

// pollEvery is the tick for require.Eventually in lifecycle tests.
const pollEvery = 2 * time.Millisecond

// waitBudgetIdle waits until workers left over by earlier tests have exited.
func waitBudgetIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return budget.inUse.Load() == 0 }, 2*time.Second, pollEvery)
}
