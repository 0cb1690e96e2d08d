// File: atom/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package atom implements a single-slot, lock-free mutable reference cell.
//
// An Atom holds exactly one value. Get is a single atomic load; Swap is an
// optimistic compare-and-swap loop driven by a caller-supplied update function:
//
//	balance, _ := atom.New(100)
//	balance.Swap(func(cur int) int { return cur + 10 })
//
// The update function may run any number of times before one attempt commits,
// so it must be pure: no side effects outside computing the candidate value.
// This cannot be checked at runtime and is part of the contract.
//
// Optional capabilities are injected through Options:
//   - WithIsolation enables the ownership-or-shareable gate. Every stored value,
//     and every value handed out by Get, must either be shareable or be touched
//     only from the domain that created the Atom.
//   - WithCollector registers the Atom as a root of a tracing, compacting
//     collector and routes committed swaps through its write barrier.
//   - WithObserver reports commits, retries and violations (metrics).
//
// Swap is lock-free but not wait-free. Contention is resolved by immediate retry
// with no backoff and no retry limit. No ordering is promised between Atoms.
package atom
