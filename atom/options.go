// File: atom/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package atom

import "github.com/momentics/atomcell/api"

// Observer receives Atom events. Implementations must be non-blocking.
type Observer interface {
	SwapCommitted(attempts int)
	SwapRetried()
	ShareabilityViolated(op string)
}

// Option configures an Atom at construction.
type Option func(*options)

type options struct {
	isolation api.Isolation
	collector api.Collector
	barrier   api.WriteBarrier
	observer  Observer
}

// WithIsolation enables shareability enforcement against iso.
// A nil iso leaves enforcement off.
func WithIsolation(iso api.Isolation) Option {
	return func(o *options) { o.isolation = iso }
}

// WithCollector registers the Atom as a root of c and installs c as its write barrier.
func WithCollector(c api.Collector) Option {
	return func(o *options) {
		o.collector = c
		if c != nil {
			o.barrier = c
		}
	}
}

// WithWriteBarrier installs a write barrier without root registration.
func WithWriteBarrier(wb api.WriteBarrier) Option {
	return func(o *options) { o.barrier = wb }
}

// WithObserver attaches an event observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}
