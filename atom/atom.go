// File: atom/atom.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free single-slot cell with CAS-driven Swap and collector hooks.

package atom

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/atomcell/api"
)

// cell owns the slot. The slot stores a pointer to an immutable box so values
// of any width are published with a single-word CAS. Padding keeps the slot
// off cache lines used by neighbouring allocations.
type cell[T any] struct {
	_    cpu.CacheLinePad
	slot atomic.Pointer[T]
	_    cpu.CacheLinePad

	gate     *gate
	barrier  api.WriteBarrier
	observer Observer
	mutator  func() (exit func()) // collector's mutator window, nil without a collector
}

// Atom is a mutable reference cell holding one value of type T.
// The zero Atom is not usable; construct with New.
type Atom[T any] struct {
	c          *cell[T]
	unregister func()
}

// New creates an Atom holding initial.
//
// With enforcement on, the Atom binds to the caller's domain. Outside any
// domain the initial value must be shareable, otherwise New fails with
// api.ErrShareabilityViolation.
func New[T any](initial T, opts ...Option) (*Atom[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.collector != nil {
		// Publishing the initial value and registering the root happen in
		// one mutator window.
		defer o.collector.EnterMutator()()
	}
	c := &cell[T]{barrier: o.barrier, observer: o.observer}
	if o.isolation != nil {
		c.gate = newGate(o.isolation)
		if err := c.gate.admit("new", initial); err != nil {
			c.violated("new")
			return nil, err
		}
	}
	c.slot.Store(&initial)

	a := &Atom[T]{c: c}
	if o.collector != nil {
		c.mutator = o.collector.EnterMutator
		// The collector holds the cell only. Once the handle is unreachable
		// the finalizer removes the root.
		a.unregister = o.collector.RegisterRoot(c)
		runtime.SetFinalizer(a, func(a *Atom[T]) { a.unregister() })
	}
	return a, nil
}

// Get atomically loads the current value.
// With enforcement on, the value is re-validated against the calling domain.
// With a collector, the load runs inside its mutator window.
func (a *Atom[T]) Get() (T, error) {
	if a.c.mutator != nil {
		defer a.c.mutator()()
	}
	v := *a.c.slot.Load()
	if a.c.gate != nil {
		if err := a.c.gate.admit("get", v); err != nil {
			a.c.violated("get")
			var zero T
			return zero, err
		}
	}
	return v, nil
}

// Swap replaces the value with fn(current) and returns the committed value.
//
// fn must be pure. It is invoked once per attempt and only the result of the
// attempt whose CAS succeeds is kept. A candidate rejected by the shareability
// gate aborts the swap immediately with the slot untouched.
//
// With a collector, every attempt and the write barrier run inside the
// collector's mutator window, so no collection separates tracing from the
// commit. fn must not start a collection.
func (a *Atom[T]) Swap(fn func(old T) T) (T, error) {
	c := a.c
	if c.mutator != nil {
		defer c.mutator()()
	}
	for attempt := 1; ; attempt++ {
		old := c.slot.Load()
		candidate := fn(*old)
		if c.gate != nil {
			if err := c.gate.admit("swap", candidate); err != nil {
				c.violated("swap")
				var zero T
				return zero, err
			}
		}
		if c.slot.CompareAndSwap(old, &candidate) {
			if c.barrier != nil {
				c.barrier.Written(*old, candidate)
			}
			if c.observer != nil {
				c.observer.SwapCommitted(attempt)
			}
			return candidate, nil
		}
		if c.observer != nil {
			c.observer.SwapRetried()
		}
	}
}

// Shareable reports whether the Atom itself may cross domain boundaries.
// Atoms built with enforcement are shareable; their contents stay gated.
func (a *Atom[T]) Shareable() bool {
	return a.c.gate != nil
}

// Owner reports the cached owning domain, api.NoDomain when unbound,
// invalidated or when enforcement is off.
func (a *Atom[T]) Owner() api.Domain {
	if a.c.gate == nil {
		return api.NoDomain
	}
	return a.c.gate.bound()
}

// Trace reports the held value to the collector.
func (a *Atom[T]) Trace(visit api.Visitor) { a.c.Trace(visit) }

// Relocate rewrites the slot after compaction. See cell.Relocate.
func (a *Atom[T]) Relocate(resolve api.Resolver) { a.c.Relocate(resolve) }

// Close drops the collector registration early. The Atom stays readable.
func (a *Atom[T]) Close() {
	if a.unregister != nil {
		a.unregister()
		runtime.SetFinalizer(a, nil)
	}
}

func (c *cell[T]) Trace(visit api.Visitor) {
	visit(*c.slot.Load())
}

// Relocate asks resolve for the moved location of the held value and stores
// it with a plain atomic store. The collector calls it with its mutator window
// closed, and Get and Swap run inside that window, so no Swap interleaves.
func (c *cell[T]) Relocate(resolve api.Resolver) {
	moved, ok := resolve(*c.slot.Load())
	if !ok {
		return
	}
	if v, ok := moved.(T); ok {
		c.slot.Store(&v)
	}
}

func (c *cell[T]) violated(op string) {
	if c.observer != nil {
		c.observer.ShareabilityViolated(op)
	}
}
