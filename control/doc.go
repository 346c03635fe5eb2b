// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection layer for
// hioload-thread.
//
// Provides concurrent-safe state handling primitives including:
//   - Typed tuning configuration loaded from YAML, .env and the environment
//   - Snapshot config reads with reload observers
//   - Lifecycle counters
//   - State export, debug hooks, and probe registration
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
