// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for atomcell components.

package benchmarks

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/momentics/atomcell/atom"
	"github.com/momentics/atomcell/control"
	"github.com/momentics/atomcell/heap"
	"github.com/momentics/atomcell/isolate"
	"github.com/momentics/atomcell/pool"
	"github.com/momentics/atomcell/primitives"
)

// BenchmarkAtomSwap measures contended Swap on a plain Atom.
func BenchmarkAtomSwap(b *testing.B) {
	a, err := atom.New(0)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Swap(func(v int) int { return v + 1 })
		}
	})
}

// BenchmarkAtomSwapEnforced measures Swap with the shareability gate on.
func BenchmarkAtomSwapEnforced(b *testing.B) {
	a, err := atom.New(0, atom.WithIsolation(isolate.NewRuntime()))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Swap(func(v int) int { return v + 1 })
		}
	})
}

// BenchmarkAtomSwapObserved measures Swap feeding the metrics registry.
func BenchmarkAtomSwapObserved(b *testing.B) {
	obs := control.NewAtomMetrics(control.NewMetricsRegistry())
	a, err := atom.New(0, atom.WithObserver(obs))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Swap(func(v int) int { return v + 1 })
		}
	})
}

// BenchmarkAtomGet measures uncontended loads.
func BenchmarkAtomGet(b *testing.B) {
	a, err := atom.New(42)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			a.Get()
		}
	})
}

// BenchmarkMutexIncrement is the lock-based baseline for BenchmarkAtomSwap.
func BenchmarkMutexIncrement(b *testing.B) {
	var mu sync.Mutex
	v := 0
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			v++
			mu.Unlock()
		}
	})
}

// BenchmarkAtomicAdd is the hardware fetch-and-add baseline.
func BenchmarkAtomicAdd(b *testing.B) {
	var v atomic.Int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			v.Add(1)
		}
	})
}

// BenchmarkBooleanToggle measures the Atom-backed boolean.
func BenchmarkBooleanToggle(b *testing.B) {
	flag, err := primitives.NewBoolean(false)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			flag.Toggle()
		}
	})
}

// BenchmarkStackPushPop measures the Atom-backed stack.
func BenchmarkStackPushPop(b *testing.B) {
	s, err := primitives.NewStack[int]()
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Push(i)
			s.Pop()
			i++
		}
	})
}

// BenchmarkThreadPoolEnqueue measures task submission and completion.
func BenchmarkThreadPoolEnqueue(b *testing.B) {
	p, err := pool.New(pool.Config{Size: 4, Name: "bench"})
	if err != nil {
		b.Fatal(err)
	}
	defer p.Shutdown()
	var wg sync.WaitGroup
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wg.Add(1)
		if err := p.Enqueue(wg.Done); err != nil {
			b.Fatal(err)
		}
	}
	wg.Wait()
}

// BenchmarkHeapCollect measures a collection over a heap with one live
// chain rooted in an Atom and an equal amount of garbage.
func BenchmarkHeapCollect(b *testing.B) {
	const objects = 1024
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		h := heap.New()
		var head heap.Ref
		h.Mutate(func() {
			for j := 0; j < objects; j++ {
				h.Alloc(j)
				head = h.Alloc(j, head)
			}
		})
		a, err := atom.New(head, atom.WithCollector(h))
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		h.Collect()
		a.Close()
	}
}
