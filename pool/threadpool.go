// File: pool/threadpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadPool runs submitted funcs on a fixed set of worker goroutines.

package pool

import (
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/atomcell/affinity"
	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/atom"
	"github.com/momentics/atomcell/primitives"
)

// Config holds pool parameters, immutable after New.
type Config struct {
	Size          int          // number of workers, must be positive
	Name          string       // used in worker names and logs
	LockOSThread  bool         // lock each worker to its OS thread
	PinCPUs       bool         // pin worker n to CPU n mod NumCPU; implies LockOSThread
	OnWorkerStart func(id int) // runs on the worker goroutine before it takes work
	OnWorkerStop  func(id int) // runs on the worker goroutine after it stops
	Logger        *log.Logger  // defaults to log.Default()
}

type poolState struct {
	shutdown bool
}

// ThreadPool is a fixed-size worker pool. It is not shareable across domains.
type ThreadPool struct {
	cfg    Config
	logger *log.Logger

	state *atom.Atom[poolState]
	alive *atom.Atom[int]

	mu    sync.Mutex
	cond  *sync.Cond
	queue *queue.Queue
	wg    sync.WaitGroup

	// statistics
	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panics         atomic.Int64
}

// New starts cfg.Size workers and returns once all of them are running.
func New(cfg Config) (*ThreadPool, error) {
	if cfg.Size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "size must be a positive integer").
			WithContext("size", cfg.Size)
	}
	if cfg.Name == "" {
		cfg.Name = "pool"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	state, err := atom.New(poolState{})
	if err != nil {
		return nil, err
	}
	alive, err := atom.New(0)
	if err != nil {
		return nil, err
	}
	started, err := primitives.NewCountDownLatch(cfg.Size)
	if err != nil {
		return nil, err
	}
	p := &ThreadPool{
		cfg:    cfg,
		logger: logger,
		state:  state,
		alive:  alive,
		queue:  queue.New(),
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		go p.worker(i, started)
	}
	started.Wait()
	return p, nil
}

// Name returns the pool name.
func (p *ThreadPool) Name() string { return p.cfg.Name }

// WorkerName returns the name used for worker id in logs.
func (p *ThreadPool) WorkerName(id int) string {
	return fmt.Sprintf("%s worker %d", p.cfg.Name, id)
}

// Enqueue queues work for execution. After Shutdown it returns
// api.ErrEnqueueAfterShutdown.
func (p *ThreadPool) Enqueue(work func()) error {
	if work == nil {
		return api.ErrInvalidArgument
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isShutdown() {
		return api.ErrEnqueueAfterShutdown
	}
	p.queue.Add(work)
	p.totalTasks.Add(1)
	p.cond.Signal()
	return nil
}

// Len returns the number of running workers.
func (p *ThreadPool) Len() int {
	n, _ := p.alive.Get()
	return n
}

// QueueLen returns the number of queued, not yet started tasks.
func (p *ThreadPool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Length()
}

// Shutdown stops accepting work, lets workers drain the queue and waits for
// them to exit. Safe to call more than once; must not be called from a worker.
func (p *ThreadPool) Shutdown() {
	var already bool
	p.state.Swap(func(cur poolState) poolState {
		already = cur.shutdown
		return poolState{shutdown: true}
	})
	if !already {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	}
	p.wg.Wait()
}

// IsShutdown reports whether Shutdown has been called.
func (p *ThreadPool) IsShutdown() bool { return p.isShutdown() }

// Shareable is always false: the pool owns goroutines and a mutable queue.
func (p *ThreadPool) Shareable() bool { return false }

// Stats returns basic pool metrics.
func (p *ThreadPool) Stats() map[string]int64 {
	total := p.totalTasks.Load()
	completed := p.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": completed,
		"pending_tasks":   total - completed,
		"panics":          p.panics.Load(),
		"num_workers":     int64(p.Len()),
	}
}

func (p *ThreadPool) isShutdown() bool {
	s, _ := p.state.Get()
	return s.shutdown
}

// worker is the main loop of one pool goroutine.
func (p *ThreadPool) worker(id int, started *primitives.CountDownLatch) {
	defer p.wg.Done()
	name := p.WorkerName(id)
	switch {
	case p.cfg.PinCPUs:
		// Never unlocked: the pinned thread exits with the worker instead of
		// returning to the scheduler with a narrowed CPU mask.
		runtime.LockOSThread()
		if err := affinity.SetAffinity(affinity.CPUForWorker(id)); err != nil {
			p.logger.Printf("[pool] %s: %v", name, err)
		}
	case p.cfg.LockOSThread:
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	if p.cfg.OnWorkerStart != nil {
		p.cfg.OnWorkerStart(id)
	}
	p.alive.Swap(func(n int) int { return n + 1 })
	defer func() {
		p.alive.Swap(func(n int) int { return n - 1 })
		if p.cfg.OnWorkerStop != nil {
			p.cfg.OnWorkerStop(id)
		}
	}()
	started.CountDown()

	for {
		work, ok := p.next()
		if !ok {
			return
		}
		p.execute(name, work)
	}
}

// next blocks until work is available or the pool is shut down and drained.
func (p *ThreadPool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.queue.Length() == 0 {
		if p.isShutdown() {
			return nil, false
		}
		p.cond.Wait()
	}
	return p.queue.Remove().(func()), true
}

// execute runs work, recovering and logging panics to keep the worker alive.
func (p *ThreadPool) execute(name string, work func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logger.Printf("%s rescued:\n%T: %v\n%s", name, r, r, debug.Stack())
		}
		p.completedTasks.Add(1)
	}()
	work()
}
