// File: thread/diag.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package-wide logger, defaults and lifecycle counters.

package thread

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-thread/control"
	"github.com/momentics/hioload-thread/logging"
)

// Counter keys published through Metrics.
const (
	MetricStarted        = "thread.started"
	MetricStopped        = "thread.stopped"
	MetricStartFailed    = "thread.start_failed"
	MetricRestartTimeout = "thread.restart_timeout"
	MetricForcedCancel   = "thread.forced_cancel"
	MetricPriorityFailed = "thread.priority_failed"
	MetricPanicked       = "thread.panicked"
	MetricLockMisuse     = "lock.misuse"
	MetricLive           = "thread.live" // gauge: incarnations holding a budget slot
)

var (
	pkgLogger     atomic.Pointer[zap.Logger]
	defaultConfig atomic.Pointer[control.ThreadConfig]
	budget        threadBudget
	metrics       = control.NewMetricsRegistry()
)

func init() {
	pkgLogger.Store(logging.Default())
	cfg := control.DefaultThreadConfig()
	defaultConfig.Store(&cfg)
}

// SetLogger replaces the package logger used by locks, main-thread
// registration and threads created without WithLogger. nil silences it.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l)
}

func logger() *zap.Logger {
	return pkgLogger.Load()
}

// Configure validates cfg and makes it the default for threads created
// afterwards. It also resizes the process-wide thread budget.
func Configure(cfg control.ThreadConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	defaultConfig.Store(&cfg)
	SetMaxThreads(cfg.MaxThreads)
	return nil
}

// DefaultConfig returns the configuration new threads start from.
func DefaultConfig() control.ThreadConfig {
	return *defaultConfig.Load()
}

// SetMaxThreads bounds how many managed threads may be alive at once across
// the process; n <= 0 removes the bound. Incarnations already running keep
// counting against the new bound, and abandoned ones until they return.
func SetMaxThreads(n int) {
	budget.limit.Store(int64(max(n, 0)))
}

// Metrics returns a snapshot of the lifecycle counters plus the live gauge.
func Metrics() map[string]any {
	out := metrics.GetSnapshot()
	out[MetricLive] = budget.inUse.Load()
	return out
}

// threadBudget counts live incarnations against a resizable limit.
type threadBudget struct {
	limit atomic.Int64 // 0 = unbounded
	inUse atomic.Int64
}

func (b *threadBudget) acquire() bool {
	for {
		cur := b.inUse.Load()
		if limit := b.limit.Load(); limit > 0 && cur >= limit {
			return false
		}
		if b.inUse.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

func (b *threadBudget) release() {
	b.inUse.Add(-1)
}
