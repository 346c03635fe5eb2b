//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific implementation for setting thread CPU affinity.

package affinity

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                   = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask  = kernel32.NewProc("SetThreadAffinityMask")
	procGetProcessAffinityMask = kernel32.NewProc("GetProcessAffinityMask")
)

// setAffinityPlatform sets thread affinity to a given CPU for Windows.
func setAffinityPlatform(cpuID int) error {
	if cpuID >= 8*int(unsafe.Sizeof(uintptr(0))) {
		return fmt.Errorf("affinity: cpu %d beyond the thread mask: %w", cpuID, windows.ERROR_INVALID_PARAMETER)
	}
	mask := uintptr(1) << cpuID
	ret, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if ret == 0 {
		return fmt.Errorf("affinity: SetThreadAffinityMask(cpu %d): %w", cpuID, err)
	}
	return nil
}

// currentPlatform reports the process mask; Windows has no query for a
// single thread's mask.
func currentPlatform() ([]int, error) {
	var procMask, sysMask uintptr
	ret, _, err := procGetProcessAffinityMask.Call(
		uintptr(windows.CurrentProcess()),
		uintptr(unsafe.Pointer(&procMask)),
		uintptr(unsafe.Pointer(&sysMask)),
	)
	if ret == 0 {
		return nil, fmt.Errorf("affinity: GetProcessAffinityMask: %w", err)
	}
	var cpus []int
	for cpu := 0; procMask != 0; cpu++ {
		if procMask&1 != 0 {
			cpus = append(cpus, cpu)
		}
		procMask >>= 1
	}
	return cpus, nil
}
