//go:build !linux
// +build !linux

// File: isolate/thread_other.go
// Author: momentics <momentics@gmail.com>
//
// Without a portable thread id, domains are keyed by goroutine id. A domain
// goroutine holds LockOSThread, so the two identify the same worker.

package isolate

import "github.com/momentics/atomcell/internal/goid"

func threadKey() uint64 {
	return goid.Current()
}
