// File: heap/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package heap is a small host object model with a stop-the-world tracing,
// compacting collector. Objects live in an arena and are addressed by Ref
// handles; a collection marks everything reachable from registered roots,
// slides survivors toward the start of the arena and asks every root to
// rewrite the handles it holds.
//
// Atoms registered as roots enter the mutator window on every Get and Swap.
// Code that holds a Ref across calls, such as Alloc followed by Swap, wraps
// the whole sequence in Mutate; the window nests within a goroutine. Collect
// waits for every mutator to leave, which is the exclusion window the root
// Relocate hooks rely on.
package heap
