//go:build linux
// +build linux

// File: isolate/thread_linux.go
// Author: momentics <momentics@gmail.com>
//
// Domains are keyed by kernel thread id; domain goroutines hold LockOSThread.

package isolate

import "golang.org/x/sys/unix"

func threadKey() uint64 {
	return uint64(unix.Gettid())
}
