// File: api/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Debug is a registry of named probes evaluated on demand.
type Debug interface {
	// DumpState evaluates every probe and returns the results by name.
	DumpState() map[string]any
	RegisterProbe(name string, fn func() any)
	UnregisterProbe(name string)
}
