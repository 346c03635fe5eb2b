// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_windows.go, etc.) guarded by build tags.
// Callers are expected to have locked their goroutine to its OS thread first,
// otherwise the hint lands on whichever thread the runtime happened to pick.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-thread/api"
)

// MaxCPUs is the highest CPU index (exclusive) a hint may name.
const MaxCPUs = 1024

// SetAffinity pins the calling OS thread to a given logical CPU on supported platforms.
// On unsupported platforms returns an error.
func SetAffinity(cpuID int) error {
	if cpuID < 0 || cpuID >= MaxCPUs {
		return fmt.Errorf("affinity: cpu %d out of range [0,%d): %w", cpuID, MaxCPUs, api.ErrInvalidArgument)
	}
	return setAffinityPlatform(cpuID)
}

// Current returns the CPUs the calling OS thread may run on, in ascending order.
func Current() ([]int, error) {
	return currentPlatform()
}
