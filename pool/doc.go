// Package pool
// Author: momentics <momentics@gmail.com>
//
// Fixed-size worker pool coordinated through Atoms.
//
// Pool state (running or shut down) and the live-worker gauge are atom.Atom
// cells; start-up blocks on a primitives.CountDownLatch until every worker is
// running. Work waits in a FIFO (github.com/eapache/queue) guarded by a
// mutex/cond pair, so idle workers sleep instead of spinning.
//
// Workers may be locked to their OS threads and pinned to CPUs, which is what
// the isolate package builds its domains on.
package pool
