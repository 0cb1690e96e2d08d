package affinity

import (
	"errors"
	"runtime"
	"testing"

	"github.com/momentics/atomcell/api"
)

func TestSetAffinityRejectsNegative(t *testing.T) {
	if err := SetAffinity(-1); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSetAffinityCurrentCPU(t *testing.T) {
	errCh := make(chan error, 1)
	go func() {
		// Exiting while locked retires the pinned thread.
		runtime.LockOSThread()
		errCh <- SetAffinity(0)
	}()
	err := <-errCh
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		if !errors.Is(err, api.ErrNotSupported) {
			t.Fatalf("expected ErrNotSupported, got %v", err)
		}
		return
	}
	if err != nil {
		// Restricted cpusets (containers) may exclude CPU 0.
		t.Skipf("cpu 0 not available: %v", err)
	}
}

func TestCPUForWorker(t *testing.T) {
	n := runtime.NumCPU()
	for id := -3; id < 3*n; id++ {
		cpu := CPUForWorker(id)
		if cpu < 0 || cpu >= n {
			t.Fatalf("worker %d mapped to cpu %d outside [0,%d)", id, cpu, n)
		}
	}
}
