package primitives_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/atom"
	"github.com/momentics/atomcell/isolate"
	"github.com/momentics/atomcell/pool"
	"github.com/momentics/atomcell/primitives"
)

func TestLatchInvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := primitives.NewCountDownLatch(n); !errors.Is(err, api.ErrInvalidArgument) {
			t.Errorf("count %d: want ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestLatchCountDown(t *testing.T) {
	l, _ := primitives.NewCountDownLatch(3)
	for want := 2; want >= 0; want-- {
		got, err := l.CountDown()
		if err != nil || got != want {
			t.Fatalf("CountDown = %d, %v; want %d", got, err, want)
		}
		if l.Count() != want {
			t.Fatalf("Count = %d, want %d", l.Count(), want)
		}
	}
}

func TestLatchCountDownPastZero(t *testing.T) {
	l, _ := primitives.NewCountDownLatch(1)
	l.CountDown()
	if _, err := l.CountDown(); !errors.Is(err, api.ErrAlreadyCountedDown) {
		t.Fatalf("want ErrAlreadyCountedDown, got %v", err)
	}
	if l.Count() != 0 {
		t.Fatalf("count moved below zero: %d", l.Count())
	}
}

func TestLatchWait(t *testing.T) {
	l, _ := primitives.NewCountDownLatch(5)
	p, err := pool.New(pool.Config{Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()
	for i := 0; i < 5; i++ {
		p.Enqueue(func() {
			time.Sleep(10 * time.Millisecond)
			l.CountDown()
		})
	}
	l.Wait()
	if l.Count() != 0 {
		t.Fatalf("Wait returned at count %d", l.Count())
	}
}

func TestLatchWaitContext(t *testing.T) {
	l, _ := primitives.NewCountDownLatch(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.WaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
	l.CountDown()
	if err := l.WaitContext(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestLatchAcrossDomains(t *testing.T) {
	rt := isolate.NewRuntime()
	defer rt.Close()
	l, err := primitives.NewCountDownLatch(10, atom.WithIsolation(rt))
	if err != nil {
		t.Fatal(err)
	}
	if !rt.IsShareable(l) {
		t.Fatal("enforcing latch must be shareable")
	}
	waiter, _ := rt.NewDomain("waiter")
	waited := waiter.Go(func() error {
		l.Wait()
		return nil
	})
	for i := 0; i < 10; i++ {
		d, _ := rt.NewDomain("")
		d.Go(func() error {
			_, err := l.CountDown()
			return err
		})
	}
	select {
	case err := <-waited:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("waiter never released")
	}
	if l.Count() != 0 {
		t.Fatalf("count = %d", l.Count())
	}
}
