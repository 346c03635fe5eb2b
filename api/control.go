// File: api/control.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime control surface: dynamic config, counters and worker inspection.

package api

// Inspectable is a worker that can describe itself to debug probes.
type Inspectable interface {
	Description() string
	Snapshot() map[string]any
}

// Control manages dynamic config and runtime metrics.
type Control interface {
	GetConfig() map[string]any
	// SetConfig merges cfg into the live configuration. Invalid tuning
	// values are rejected as a whole with an error wrapping
	// ErrInvalidArgument.
	SetConfig(cfg map[string]any) error
	Stats() map[string]any
	OnReload(fn func())
	SetMetric(key string, value any)
	RegisterDebugProbe(name string, fn func() any)
	// RegisterWorker publishes w's snapshot in Stats until UnregisterWorker.
	RegisterWorker(w Inspectable)
	UnregisterWorker(w Inspectable)
}
