//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Affinity hints are reported as unsupported here; callers log and carry on.

package affinity

import (
	"fmt"

	"github.com/momentics/hioload-thread/internal/concurrency"
)

func setAffinityPlatform(cpuID int) error {
	return fmt.Errorf("affinity: cpu %d: %w", cpuID, concurrency.ErrUnsupported)
}

func currentPlatform() ([]int, error) {
	return nil, fmt.Errorf("affinity: %w", concurrency.ErrUnsupported)
}
