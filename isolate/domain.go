// File: isolate/domain.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package isolate

import (
	"fmt"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/pool"
)

// Domain is an isolated execution context backed by one locked OS thread.
// Work runs one item at a time in submission order.
type Domain struct {
	id      api.Domain
	name    string
	rt      *Runtime
	workers *pool.ThreadPool
}

func (d *Domain) ID() api.Domain { return d.id }
func (d *Domain) Name() string   { return d.name }

// Go schedules fn on the domain and returns a channel that receives its
// result. A panic in fn is reported as an error.
func (d *Domain) Go(fn func() error) <-chan error {
	done := make(chan error, 1)
	err := d.workers.Enqueue(func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("isolate: %s: panic: %v", d.name, r)
			}
		}()
		done <- fn()
	})
	if err != nil {
		done <- api.NewError(api.ErrCodeClosed, "isolate: domain is closed").
			WithContext("domain", d.name)
	}
	return done
}

// Run executes fn on the domain and waits for it. Must not be called from
// the same domain.
func (d *Domain) Run(fn func() error) error {
	return <-d.Go(fn)
}

// Close drains pending work and stops the domain thread.
func (d *Domain) Close() {
	d.workers.Shutdown()
	d.rt.forget(d.id)
}

// Shareable lets domain handles be passed into other domains.
func (d *Domain) Shareable() bool { return true }
