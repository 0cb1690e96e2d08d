// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_windows.go, affinity_stub.go)
// guarded by build tags.

package affinity

import (
	"runtime"

	"github.com/momentics/atomcell/api"
)

// SetAffinity pins the current OS thread to a given logical CPU.
// The caller must hold runtime.LockOSThread for the pin to stick to its goroutine.
// On unsupported platforms returns an error wrapping api.ErrNotSupported.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "affinity: negative cpu id").WithContext("cpu", cpuID)
	}
	return setAffinityPlatform(cpuID)
}

// CPUForWorker spreads worker ids round-robin over the logical CPUs.
func CPUForWorker(workerID int) int {
	n := runtime.NumCPU()
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}
