// File: thread/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

// State is the observable lifecycle phase of a Thread.
//
//	StateIdle          → StateStarting       [Start]
//	StateStarting      → StateRunning        [body pinned to its OS thread]
//	StateRunning       → StateStopRequested  [Cancel]
//	StateStopRequested → StateStopped        [action returned / probe found it dead]
//	StateRunning       → StateStopped        [action returned on its own]
//	any active state   → StateStopped        [forced cancel]
//	StateStopped       → StateStarting       [Start]
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopRequested
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopRequested:
		return "StopRequested"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
