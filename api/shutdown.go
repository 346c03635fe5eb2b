// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components owning a background worker.
type GracefulShutdown interface {
	// Shutdown requests the worker to stop, waits for the configured grace
	// period and escalates when it is exceeded. It returns ErrThreadForced
	// when the escalation was necessary.
	Shutdown() error
}
