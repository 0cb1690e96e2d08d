package pool_test

import (
	"bytes"
	"errors"
	"log"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/internal/shareable"
	"github.com/momentics/atomcell/pool"
)

// syncBuffer guards a bytes.Buffer shared with worker goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPoolInit(t *testing.T) {
	p, err := pool.New(pool.Config{Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()
	if p.Len() != 2 {
		t.Fatalf("Len = %d, want 2", p.Len())
	}
	if p.QueueLen() != 0 {
		t.Fatalf("QueueLen = %d", p.QueueLen())
	}
	if shareable.Is(p) {
		t.Fatal("pool must not be shareable")
	}
}

func TestPoolInvalidSize(t *testing.T) {
	for _, n := range []int{0, -2} {
		if _, err := pool.New(pool.Config{Size: n}); !errors.Is(err, api.ErrInvalidArgument) {
			t.Errorf("size %d: want ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestPoolWorkerHooks(t *testing.T) {
	var mu sync.Mutex
	var started, stopped []int
	p, err := pool.New(pool.Config{
		Size: 3,
		Name: "hooked",
		OnWorkerStart: func(id int) {
			mu.Lock()
			started = append(started, id)
			mu.Unlock()
		},
		OnWorkerStop: func(id int) {
			mu.Lock()
			stopped = append(stopped, id)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	if len(started) != 3 {
		t.Fatalf("New returned before all workers started: %v", started)
	}
	mu.Unlock()
	if p.WorkerName(1) != "hooked worker 1" {
		t.Errorf("WorkerName = %q", p.WorkerName(1))
	}
	p.Shutdown()
	sort.Ints(stopped)
	if len(stopped) != 3 || stopped[0] != 0 || stopped[2] != 2 {
		t.Fatalf("stopped = %v", stopped)
	}
	if p.Len() != 0 {
		t.Fatalf("Len after shutdown = %d", p.Len())
	}
}

func TestPoolEnqueueRunsEverything(t *testing.T) {
	p, _ := pool.New(pool.Config{Size: 2})
	var mu sync.Mutex
	var results []int
	for i := 1; i <= 5; i++ {
		i := i
		if err := p.Enqueue(func() {
			mu.Lock()
			results = append(results, i)
			mu.Unlock()
		}); err != nil {
			t.Fatal(err)
		}
	}
	p.Shutdown()
	sort.Ints(results)
	if len(results) != 5 || results[0] != 1 || results[4] != 5 {
		t.Fatalf("results = %v", results)
	}
	st := p.Stats()
	if st["total_tasks"] != 5 || st["completed_tasks"] != 5 || st["pending_tasks"] != 0 {
		t.Fatalf("stats = %v", st)
	}
}

func TestPoolEnqueueAfterShutdown(t *testing.T) {
	p, _ := pool.New(pool.Config{Size: 2})
	p.Shutdown()
	if !p.IsShutdown() {
		t.Fatal("IsShutdown = false")
	}
	if err := p.Enqueue(func() {}); !errors.Is(err, api.ErrEnqueueAfterShutdown) {
		t.Fatalf("want ErrEnqueueAfterShutdown, got %v", err)
	}
	p.Shutdown()
}

func TestPoolRecoversPanics(t *testing.T) {
	out := &syncBuffer{}
	p, _ := pool.New(pool.Config{Size: 2, Name: "Test Pool", Logger: log.New(out, "", 0)})
	p.Enqueue(func() { panic(errors.New("oops")) })
	ran := make(chan struct{})
	p.Enqueue(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("pool stopped serving after a panic")
	}
	p.Shutdown()
	if !regexp.MustCompile(`Test Pool worker \d+ rescued:\n\*errors\.errorString: oops`).MatchString(out.String()) {
		t.Fatalf("log = %q", out.String())
	}
	if p.Stats()["panics"] != 1 {
		t.Fatalf("stats = %v", p.Stats())
	}
}

func TestPoolQueueLength(t *testing.T) {
	p, _ := pool.New(pool.Config{Size: 2})
	block := make(chan struct{})
	for i := 0; i < 5; i++ {
		p.Enqueue(func() { <-block })
	}
	if n := p.QueueLen(); n < 3 {
		t.Fatalf("QueueLen = %d, want >= 3", n)
	}
	close(block)
	p.Shutdown()
	if p.QueueLen() != 0 {
		t.Fatalf("queue not drained: %d", p.QueueLen())
	}
}

func TestPoolPinnedWorkers(t *testing.T) {
	p, err := pool.New(pool.Config{Size: 2, PinCPUs: true, Logger: log.New(&syncBuffer{}, "", 0)})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	p.Enqueue(func() { close(done) })
	<-done
	p.Shutdown()
}

func TestPoolConcurrentShutdown(t *testing.T) {
	p, _ := pool.New(pool.Config{Size: 4})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Shutdown()
		}()
	}
	wg.Wait()
	if p.Len() != 0 {
		t.Fatalf("Len = %d after shutdown", p.Len())
	}
}
