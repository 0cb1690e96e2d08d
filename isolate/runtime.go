// File: isolate/runtime.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package isolate

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/internal/shareable"
	"github.com/momentics/atomcell/pool"
)

// IsShareable is the default shareability predicate.
func IsShareable(v any) bool { return shareable.Is(v) }

// Option configures a Runtime.
type Option func(*Runtime)

// WithPredicate replaces the shareability predicate.
func WithPredicate(fn func(v any) bool) Option {
	return func(rt *Runtime) {
		if fn != nil {
			rt.predicate = fn
		}
	}
}

// WithLogger sets the logger handed to domain workers.
func WithLogger(l *log.Logger) Option {
	return func(rt *Runtime) { rt.logger = l }
}

// Runtime owns a set of domains and answers api.Isolation queries.
type Runtime struct {
	predicate func(v any) bool
	logger    *log.Logger
	next      atomic.Uint64
	threads   sync.Map // thread key -> api.Domain

	mu      sync.Mutex
	domains map[api.Domain]*Domain
}

var _ api.Isolation = (*Runtime)(nil)

// NewRuntime creates a runtime with no domains.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		predicate: shareable.Is,
		domains:   make(map[api.Domain]*Domain),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// NewDomain starts a domain. It returns once the domain thread is registered.
func (rt *Runtime) NewDomain(name string) (*Domain, error) {
	id := api.Domain(rt.next.Add(1))
	if name == "" {
		name = id.String()
	}
	d := &Domain{id: id, name: name, rt: rt}
	workers, err := pool.New(pool.Config{
		Size:         1,
		Name:         name,
		LockOSThread: true,
		Logger:       rt.logger,
		OnWorkerStart: func(int) {
			rt.threads.Store(threadKey(), id)
		},
		OnWorkerStop: func(int) {
			rt.threads.Delete(threadKey())
		},
	})
	if err != nil {
		return nil, fmt.Errorf("isolate: start %s: %w", name, err)
	}
	d.workers = workers

	rt.mu.Lock()
	rt.domains[id] = d
	rt.mu.Unlock()
	return d, nil
}

// CurrentDomain implements api.Isolation.
func (rt *Runtime) CurrentDomain() api.Domain {
	if v, ok := rt.threads.Load(threadKey()); ok {
		return v.(api.Domain)
	}
	return api.NoDomain
}

// IsShareable implements api.Isolation.
func (rt *Runtime) IsShareable(v any) bool {
	return rt.predicate(v)
}

// Domains lists live domains ordered by id.
func (rt *Runtime) Domains() []*Domain {
	rt.mu.Lock()
	out := make([]*Domain, 0, len(rt.domains))
	for _, d := range rt.domains {
		out = append(out, d)
	}
	rt.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Close shuts every domain down.
func (rt *Runtime) Close() {
	for _, d := range rt.Domains() {
		d.Close()
	}
}

func (rt *Runtime) forget(id api.Domain) {
	rt.mu.Lock()
	delete(rt.domains, id)
	rt.mu.Unlock()
}
