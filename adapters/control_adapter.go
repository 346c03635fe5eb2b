// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control over the control package
// primitives. Thread tuning keys written through SetConfig become the
// package default for managed threads created afterwards.

package adapters

import (
	"fmt"

	"github.com/momentics/hioload-thread/api"
	"github.com/momentics/hioload-thread/control"
	"github.com/momentics/hioload-thread/thread"
)

var _ api.Control = (*ControlAdapter)(nil)

type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter seeds the config store from cfg (defaults when nil).
func NewControlAdapter(cfg *control.Config) *ControlAdapter {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	adapter.config.SetConfig(cfg.Map())
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

// SetConfig merges cfg into the store. When the merged thread section is
// invalid nothing is stored and the validation error is returned.
func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	merged := c.config.GetSnapshot()
	for k, v := range cfg {
		merged[k] = v
	}
	tc, err := threadConfigFrom(merged)
	if err != nil {
		return err
	}
	if err := thread.Configure(tc); err != nil {
		return err
	}
	c.config.SetConfig(cfg)
	return nil
}

func (c *ControlAdapter) Stats() map[string]any {
	combined := make(map[string]any)
	for k, v := range thread.Metrics() {
		combined[k] = v
	}
	for k, v := range c.metrics.GetSnapshot() {
		combined[k] = v
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
}

func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// RegisterWorker publishes w's snapshot under "thread.<description>".
func (c *ControlAdapter) RegisterWorker(w api.Inspectable) {
	c.debug.RegisterProbe(workerProbe(w), func() any { return w.Snapshot() })
}

// UnregisterWorker removes the probe added by RegisterWorker.
func (c *ControlAdapter) UnregisterWorker(w api.Inspectable) {
	c.debug.UnregisterProbe(workerProbe(w))
}

func workerProbe(w api.Inspectable) string {
	return "thread." + w.Description()
}

// threadConfigFrom overlays the thread.* keys of m onto the current package
// default.
func threadConfigFrom(m map[string]any) (control.ThreadConfig, error) {
	tc := thread.DefaultConfig()
	fields := map[string]*int{
		"thread.stop_timeout_ms":       &tc.StopTimeoutMs,
		"thread.stop_sleep_ms":         &tc.StopSleepMs,
		"thread.cancel_poll_ms":        &tc.CancelPollMs,
		"thread.shutdown_wait_seconds": &tc.ShutdownWaitSeconds,
		"thread.low_nice":              &tc.LowNice,
		"thread.low_io_priority":       &tc.LowIOPriority,
		"thread.max_threads":           &tc.MaxThreads,
	}
	for key, dst := range fields {
		v, ok := m[key]
		if !ok {
			continue
		}
		n, err := toInt(v)
		if err != nil {
			return tc, api.NewError(api.ErrCodeInvalidArgument, "bad config value").
				WithContext("key", key).
				WithCause(fmt.Errorf("%w: %w", api.ErrInvalidArgument, err))
		}
		*dst = n
	}
	return tc, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
