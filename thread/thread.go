// File: thread/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread owns the lifecycle of one worker goroutine pinned to its own OS
// thread: start with restart-race avoidance, liveness probing, cooperative
// then forced cancellation, scheduling hints and diagnostic naming.

package thread

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/momentics/hioload-thread/affinity"
	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
	"github.com/momentics/hioload-thread/internal/concurrency"
)

var (
	_ api.Worker      = (*Thread)(nil)
	_ api.Inspectable = (*Thread)(nil)
)

var errNotRunning = errors.New("thread is not running")

// Action is the body of a managed thread. It is invoked once per successful
// Start and should return soon after ctx is done or Thread.Running turns
// false. ctx is cancelled with api.ErrThreadCancelled on a stop request that
// grants a grace period, and with api.ErrThreadForced when the incarnation is
// abandoned without one.
type Action func(ctx context.Context)

// Option customises a Thread at construction.
type Option func(*Thread)

// WithLowPriority lowers CPU niceness and moves the thread into the idle I/O
// class as soon as it starts.
func WithLowPriority() Option {
	return func(t *Thread) { t.lowPriority = true }
}

// WithLogger overrides the package logger for this thread.
func WithLogger(l *zap.Logger) Option {
	return func(t *Thread) { t.log = l }
}

// WithConfig overrides the package default timings.
func WithConfig(cfg control.ThreadConfig) Option {
	return func(t *Thread) { t.cfg = cfg }
}

// WithAffinity pins the thread to one CPU when it starts.
func WithAffinity(cpu int) Option {
	return func(t *Thread) { t.cpu = cpu }
}

// Thread manages one long-lived worker. Embed it in the component that owns
// the shared state and call Shutdown (or Cancel) before dropping it.
type Thread struct {
	startMu sync.Mutex // serializes Start
	mu      sync.Mutex // guards inc, abandoned and started
	active  atomic.Bool
	running atomic.Bool

	inc       *incarnation
	abandoned []*incarnation // force-cancelled, still executing
	started   bool

	description atomic.Pointer[string]
	action      Action
	lowPriority bool
	cpu         int
	cfg         control.ThreadConfig
	log         *zap.Logger
}

// incarnation is one run of the action. A forced cancel detaches it from its
// Thread; it can then no longer touch the Thread's flags.
type incarnation struct {
	id     string
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelCauseFunc
	tid    atomic.Int64
	gid    atomic.Uint64
}

// New creates an idle thread running action once started.
func New(description string, action Action, opts ...Option) *Thread {
	t := &Thread{
		action: action,
		cpu:    -1,
		cfg:    DefaultConfig(),
	}
	t.description.Store(&description)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetDescription sets the diagnostic name.
func (t *Thread) SetDescription(desc string) {
	t.description.Store(&desc)
}

// SetDescriptionf sets the diagnostic name from a format string.
func (t *Thread) SetDescriptionf(format string, args ...any) {
	t.SetDescription(fmt.Sprintf(format, args...))
}

// Description returns the diagnostic name.
func (t *Thread) Description() string {
	return *t.description.Load()
}

func (t *Thread) logger() *zap.Logger {
	l := t.log
	if l == nil {
		l = logger()
	}
	return l.With(zap.String("thread", t.Description()))
}

// Start launches the action on a new pinned goroutine. It is a no-op while
// the thread is running. If a previous incarnation was asked to stop but is
// still winding down, Start waits up to StopTimeoutMs for it; when it does
// not finish in time nothing new is started and the timeout is logged.
//
// Start fails, leaving the thread idle, when there is no action or the
// process-wide thread budget is exhausted.
func (t *Thread) Start() error {
	t.startMu.Lock()
	defer t.startMu.Unlock()

	if t.running.Load() {
		return nil
	}
	if t.active.Load() {
		restart := NewTimeMs(0)
		for !t.running.Load() && t.Active() && restart.Elapsed() < millis(t.cfg.StopTimeoutMs) {
			SleepMs(t.cfg.StopSleepMs)
		}
		if t.active.Load() {
			metrics.Add(MetricRestartTimeout, 1)
			t.logger().Warn("previous incarnation did not end, not restarting",
				zap.Error(api.NewError(api.ErrCodeTimeout, "restart wait expired").
					WithCause(api.ErrOperationTimeout).
					WithContext("waited_ms", t.cfg.StopTimeoutMs)))
			return nil
		}
	}

	t.mu.Lock()
	t.active.Store(true)
	t.running.Store(true)
	inc, err := t.spawn()
	if err != nil {
		t.active.Store(false)
		t.running.Store(false)
		t.mu.Unlock()
		metrics.Add(MetricStartFailed, 1)
		t.logger().Error("failed to start thread", zap.Error(err))
		return fmt.Errorf("start thread %q: %w", t.Description(), err)
	}
	t.inc = inc
	t.started = true
	t.mu.Unlock()

	metrics.Add(MetricStarted, 1)
	go t.run(inc)
	return nil
}

// spawn reserves the resources for a new incarnation.
func (t *Thread) spawn() (*incarnation, error) {
	if t.action == nil {
		return nil, api.ErrNoAction
	}
	if !budget.acquire() {
		return nil, api.ErrThreadLimit
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &incarnation{
		id:     uuid.NewString(),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (t *Thread) run(inc *incarnation) {
	defer t.forget(inc)
	defer close(inc.done)
	defer budget.release()
	defer inc.cancel(nil)
	log := t.logger().With(zap.String("incarnation", inc.id))
	defer func() {
		// A panic skips the normal completion below; Active notices the
		// exit like any other unexpected death.
		if r := recover(); r != nil {
			metrics.Add(MetricPanicked, 1)
			log.Error("thread action panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	inc.gid.Store(concurrency.GoroutineID())
	tid := concurrency.PinCurrentThread()
	inc.tid.Store(int64(tid))

	desc := t.Description()
	if desc != "" {
		prio := "high"
		if t.lowPriority {
			prio = "low"
		}
		log.Debug("thread started", zap.Int("pid", os.Getpid()), zap.Int("tid", tid), zap.String("prio", prio))
		if err := concurrency.SetThreadName(desc); err != nil && !errors.Is(err, concurrency.ErrUnsupported) {
			log.Error("thread naming failed", zap.Int("tid", tid), zap.Error(err))
		}
	}
	if t.cpu >= 0 {
		if err := affinity.SetAffinity(t.cpu); err != nil {
			t.hintFailed(log, "affinity", err)
		}
	}
	if t.lowPriority {
		t.applyHint(log, "nice", tid, func(tid int) error { return concurrency.SetNice(tid, t.cfg.LowNice) })
		t.applyHint(log, "io_priority", tid, func(tid int) error { return concurrency.SetIOPriority(tid, t.cfg.LowIOPriority) })
	}

	t.action(inc.ctx)

	if desc != "" {
		log.Debug("thread ended", zap.Int("pid", os.Getpid()), zap.Int("tid", tid))
	}
	t.finish(inc)
}

// finish is the normal completion path of an incarnation.
func (t *Thread) finish(inc *incarnation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inc != inc {
		return
	}
	t.inc = nil
	t.running.Store(false)
	t.active.Store(false)
	metrics.Add(MetricStopped, 1)
}

// forget drops an exited incarnation from the abandoned list.
func (t *Thread) forget(inc *incarnation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, a := range t.abandoned {
		if a == inc {
			t.abandoned = append(t.abandoned[:i], t.abandoned[i+1:]...)
			return
		}
	}
}

// Running reports whether the action should keep going. Called from the
// action of an incarnation that was force-cancelled it always reports false,
// even after a later Start brought the thread back up.
func (t *Thread) Running() bool {
	if !t.running.Load() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.abandoned) == 0 {
		return true
	}
	gid := concurrency.GoroutineID()
	for _, a := range t.abandoned {
		if a.gid.Load() == gid {
			return false
		}
	}
	return true
}

// Active reports whether the current incarnation is alive. When the thread
// is believed active it probes the incarnation without disturbing it; if the
// incarnation turns out to be gone (for example its action panicked or called
// runtime.Goexit) the thread is reset so a later Start succeeds.
func (t *Thread) Active() bool {
	if !t.active.Load() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if inc := t.inc; inc != nil {
		alive, err := inc.alive()
		if err != nil {
			t.logger().Error("thread liveness probe failed", zap.Int64("tid", inc.tid.Load()), zap.Error(err))
		}
		if alive {
			return true
		}
		inc.cancel(nil)
	}
	t.inc = nil
	t.active.Store(false)
	t.running.Store(false)
	return false
}

func (inc *incarnation) alive() (bool, error) {
	select {
	case <-inc.done:
		return false, nil
	default:
	}
	if tid := inc.tid.Load(); tid != 0 {
		return concurrency.ThreadAlive(int(tid))
	}
	return true, nil
}

// Cancel asks the action to stop. With waitSeconds < 0 it only signals.
// Otherwise it polls for up to waitSeconds for the incarnation to end and,
// if it is still alive afterwards (immediately for 0), detaches it: the
// thread becomes inactive at once and the abandoned goroutine's context is
// cancelled, with api.ErrThreadForced unless a grace period already cancelled
// it. Go cannot kill a goroutine, so an
// action that ignores its context keeps its OS thread, and any lock it holds,
// until it returns.
func (t *Thread) Cancel(waitSeconds int) {
	t.cancel(waitSeconds)
}

// Shutdown cancels with the configured grace period. It returns
// api.ErrThreadForced if the action had to be abandoned.
func (t *Thread) Shutdown() error {
	if t.cancel(t.cfg.ShutdownWaitSeconds) {
		return fmt.Errorf("shutdown thread %q: %w", t.Description(), api.ErrThreadForced)
	}
	return nil
}

func (t *Thread) cancel(waitSeconds int) (forced bool) {
	t.running.Store(false)
	if waitSeconds != 0 {
		t.mu.Lock()
		if t.inc != nil {
			t.inc.cancel(api.ErrThreadCancelled)
		}
		t.mu.Unlock()
	}

	if waitSeconds < 0 || !t.active.Load() {
		return false
	}
	if waitSeconds > 0 {
		deadline := absTime(waitSeconds * 1000)
		for time.Now().Before(deadline) {
			if !t.Active() {
				return false
			}
			SleepMs(t.cfg.CancelPollMs)
		}
	}

	t.mu.Lock()
	inc := t.inc
	t.inc = nil
	t.active.Store(false)
	alive := false
	if inc != nil {
		alive, _ = inc.alive()
		if alive {
			t.abandoned = append(t.abandoned, inc)
		}
	}
	t.mu.Unlock()
	if !alive {
		return false
	}
	inc.cancel(api.ErrThreadForced)
	metrics.Add(MetricForcedCancel, 1)
	t.logger().Error("thread won't end, cancelling it",
		zap.String("incarnation", inc.id),
		zap.Int64("tid", inc.tid.Load()),
		zap.Int("waited_seconds", waitSeconds),
	)
	return true
}

// SetPriority sets the CPU niceness of the running thread. Failures are
// logged and otherwise ignored.
func (t *Thread) SetPriority(nice int) {
	t.applyHint(t.logger(), "nice", t.ThreadID(), func(tid int) error { return concurrency.SetNice(tid, nice) })
}

// SetIOPriority puts the running thread into the idle I/O class at the given
// level. Failures are logged and otherwise ignored.
func (t *Thread) SetIOPriority(level int) {
	t.applyHint(t.logger(), "io_priority", t.ThreadID(), func(tid int) error { return concurrency.SetIOPriority(tid, level) })
}

func (t *Thread) applyHint(log *zap.Logger, hint string, tid int, apply func(tid int) error) {
	// tid 0 would address the calling thread rather than this one.
	if tid == 0 && concurrency.ThreadIDsSupported {
		t.hintFailed(log, hint, errNotRunning)
		return
	}
	if err := apply(tid); err != nil {
		t.hintFailed(log, hint, err)
	}
}

func (t *Thread) hintFailed(log *zap.Logger, hint string, err error) {
	metrics.Add(MetricPriorityFailed, 1)
	log.Warn("scheduling hint failed", zap.String("hint", hint), zap.Error(err))
}

// ThreadID returns the OS thread id of the running incarnation, 0 if none.
func (t *Thread) ThreadID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inc == nil {
		return 0
	}
	return int(t.inc.tid.Load())
}

// GoroutineID returns the goroutine id of the running incarnation, 0 if none.
func (t *Thread) GoroutineID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inc == nil {
		return 0
	}
	return t.inc.gid.Load()
}

// State reports the current lifecycle phase without probing.
func (t *Thread) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case !t.active.Load():
		if t.started {
			return StateStopped
		}
		return StateIdle
	case !t.running.Load():
		return StateStopRequested
	case t.inc != nil && t.inc.gid.Load() == 0:
		return StateStarting
	default:
		return StateRunning
	}
}

// Snapshot describes the thread for debug probes.
func (t *Thread) Snapshot() map[string]any {
	out := map[string]any{
		"description":  t.Description(),
		"state":        t.State().String(),
		"low_priority": t.lowPriority,
	}
	t.mu.Lock()
	out["abandoned"] = len(t.abandoned)
	if inc := t.inc; inc != nil {
		out["incarnation"] = inc.id
		out["tid"] = inc.tid.Load()
		out["goroutine"] = inc.gid.Load()
	}
	t.mu.Unlock()
	return out
}
