// File: facade/facade.go
// Unified facade layer for atomcell.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the Facade struct, which aggregates the runtime pieces an
// Atom can be wired to: the isolation runtime, the heap collector, the metrics
// observer, debug probes, a worker pool and a set of pre-started domains. All
// of them are built from one control.Config; atoms created through NewAtom get
// exactly the capabilities the config enables.

package facade

import (
	"fmt"
	"log"
	"sync"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/atom"
	"github.com/momentics/atomcell/control"
	"github.com/momentics/atomcell/heap"
	"github.com/momentics/atomcell/isolate"
	"github.com/momentics/atomcell/pool"
)

// Facade is the main entry point.
type Facade struct {
	store    *control.ConfigStore
	runtime  *isolate.Runtime // nil when isolation is not enforced
	heap     *heap.Heap       // nil when the collector is off
	metrics  *control.MetricsRegistry
	observer *control.AtomMetrics // nil when metrics are off
	debug    *control.DebugProbes
	pool     *pool.ThreadPool
	domains  []*isolate.Domain

	mu     sync.Mutex // protects closed
	closed bool
}

// New constructs a Facade from cfg, or from control.DefaultConfig when cfg is nil.
// Initialization order: heap, isolation runtime (using the heap predicate when
// both are on), pool, domains, probes.
func New(cfg *control.Config) (*Facade, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Facade{
		store:   control.NewConfigStore(cfg),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}

	if cfg.Collector {
		var opts []heap.Option
		if cfg.Debug {
			opts = append(opts, heap.WithLogger(log.Default()))
		}
		f.heap = heap.New(opts...)
	}
	if cfg.EnforceIsolation {
		opts := []isolate.Option{isolate.WithLogger(log.Default())}
		if f.heap != nil {
			opts = append(opts, isolate.WithPredicate(f.heap.IsShareable))
		}
		f.runtime = isolate.NewRuntime(opts...)
	}
	if cfg.Metrics {
		f.observer = control.NewAtomMetrics(f.metrics)
	}

	p, err := pool.New(pool.Config{
		Size:    cfg.Pool.Size,
		Name:    cfg.Pool.Name,
		PinCPUs: cfg.Pool.PinCPUs,
	})
	if err != nil {
		return nil, fmt.Errorf("pool init failure: %w", err)
	}
	f.pool = p

	if cfg.Domains > 0 {
		if f.runtime == nil {
			log.Printf("[facade] %d domains requested without isolation, none started", cfg.Domains)
		} else {
			for i := 0; i < cfg.Domains; i++ {
				d, err := f.runtime.NewDomain(fmt.Sprintf("%s-domain-%d", cfg.Pool.Name, i))
				if err != nil {
					f.runtime.Close()
					f.pool.Shutdown()
					return nil, fmt.Errorf("domain init failure: %w", err)
				}
				f.domains = append(f.domains, d)
			}
		}
	}

	f.registerGauges()
	if cfg.Debug {
		f.registerProbes()
	}
	f.store.OnReload(func(c control.Config) {
		log.Printf("[facade] config updated: enforce_isolation=%t collector=%t metrics=%t (applies to atoms built afterwards)",
			c.EnforceIsolation && f.runtime != nil, c.Collector && f.heap != nil, c.Metrics && f.observer != nil)
	})

	log.Printf("[facade] started: enforce_isolation=%t collector=%t metrics=%t pool=%s/%d domains=%d",
		f.runtime != nil, f.heap != nil, f.observer != nil, p.Name(), cfg.Pool.Size, len(f.domains))
	return f, nil
}

func (f *Facade) registerGauges() {
	f.metrics.Gauge("pool.workers", func() int64 { return int64(f.pool.Len()) })
	f.metrics.Gauge("pool.pending_tasks", func() int64 { return int64(f.pool.QueueLen()) })
	if f.heap != nil {
		f.metrics.Gauge("heap.objects", func() int64 { return int64(f.heap.Len()) })
		f.metrics.Gauge("heap.collections", func() int64 { return int64(f.heap.Stats().Collections) })
	}
	if f.runtime != nil {
		f.metrics.Gauge("isolate.domains", func() int64 { return int64(len(f.runtime.Domains())) })
	}
}

func (f *Facade) registerProbes() {
	f.debug.RegisterProbe("config", func() any { return f.store.Snapshot() })
	f.debug.RegisterProbe("metrics", func() any { return f.metrics.Snapshot() })
	f.debug.RegisterProbe("pool", func() any { return f.pool.Stats() })
	if f.heap != nil {
		f.debug.RegisterProbe("heap", func() any { return f.heap.Stats() })
	}
	if f.runtime != nil {
		f.debug.RegisterProbe("domains", func() any {
			names := make([]string, 0, len(f.domains))
			for _, d := range f.runtime.Domains() {
				names = append(names, d.Name())
			}
			return names
		})
	}
}

// AtomOptions returns the atom options implied by the current config.
// Capabilities the facade was not started with are left out.
func (f *Facade) AtomOptions() []atom.Option {
	cfg := f.store.Snapshot()
	var opts []atom.Option
	if cfg.EnforceIsolation && f.runtime != nil {
		opts = append(opts, atom.WithIsolation(f.runtime))
	}
	if cfg.Collector && f.heap != nil {
		opts = append(opts, atom.WithCollector(f.heap))
	}
	if cfg.Metrics && f.observer != nil {
		opts = append(opts, atom.WithObserver(f.observer))
	}
	return opts
}

// NewAtom creates an Atom wired to f's isolation runtime, collector and
// metrics, as enabled by the config.
func NewAtom[T any](f *Facade, initial T) (*atom.Atom[T], error) {
	return atom.New(initial, f.AtomOptions()...)
}

// Submit dispatches a task to the worker pool.
func (f *Facade) Submit(task func()) error {
	return f.pool.Enqueue(task)
}

// Collect runs a heap collection. It fails with api.ErrNotSupported when the
// collector is off.
func (f *Facade) Collect() (heap.Stats, error) {
	if f.heap == nil {
		return heap.Stats{}, api.NewError(api.ErrCodeNotSupported, "collector disabled")
	}
	return f.heap.Collect(), nil
}

// Mutate runs fn inside the heap's mutator window, so heap refs allocated or
// loaded in fn cannot be moved before fn returns. Without a collector fn just runs.
func (f *Facade) Mutate(fn func()) {
	if f.heap == nil {
		fn()
		return
	}
	f.heap.Mutate(fn)
}

// Update changes the runtime-adjustable part of the config.
func (f *Facade) Update(fn func(control.Config) control.Config) (control.Config, error) {
	return f.store.Update(fn)
}

// Reload replaces the config with the contents of a YAML file.
func (f *Facade) Reload(path string) (control.Config, error) {
	return f.store.Reload(path)
}

// Config returns the current config snapshot.
func (f *Facade) Config() control.Config { return f.store.Snapshot() }

// Runtime returns the isolation runtime, nil when isolation is not enforced.
func (f *Facade) Runtime() *isolate.Runtime { return f.runtime }

// Heap returns the collector heap, nil when the collector is off.
func (f *Facade) Heap() *heap.Heap { return f.heap }

// Metrics returns the metrics registry.
func (f *Facade) Metrics() *control.MetricsRegistry { return f.metrics }

// Debug returns the debug probe registry.
func (f *Facade) Debug() api.Debug { return f.debug }

// Pool returns the worker pool.
func (f *Facade) Pool() *pool.ThreadPool { return f.pool }

// Domains returns the domains started by New.
func (f *Facade) Domains() []*isolate.Domain {
	return append([]*isolate.Domain(nil), f.domains...)
}

// Shutdown stops domains and the pool. Calling it more than once is a no-op.
func (f *Facade) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.runtime != nil {
		f.runtime.Close()
	}
	f.pool.Shutdown()
	log.Printf("[facade] stopped")
	return nil
}
