// Package api
// Author: momentics <momentics@gmail.com>
//
// Collector participation contracts: root tracing, relocation and write barriers.

package api

// Visitor receives every value a root currently holds.
type Visitor func(v any)

// Resolver maps a value onto its post-compaction location. ok is false when
// the value did not move.
type Resolver func(v any) (moved any, ok bool)

// Root is a structure the collector walks during marking and rewrites after compaction.
// Relocate is only called while the collector has quiesced all mutators.
type Root interface {
	Trace(visit Visitor)
	Relocate(resolve Resolver)
}

// WriteBarrier is notified of every committed reference transition.
type WriteBarrier interface {
	Written(old, new any)
}

// Collector is the memory manager a root registers with.
type Collector interface {
	WriteBarrier

	// RegisterRoot adds r to the root set. The returned func removes it and is
	// safe to call more than once.
	RegisterRoot(r Root) (unregister func())

	// EnterMutator blocks while a collection runs and then holds collections
	// off until exit is called. Calls nest within one goroutine.
	EnterMutator() (exit func())
}
