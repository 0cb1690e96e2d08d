package isolate_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/isolate"
)

func TestCurrentDomainOutsideDomains(t *testing.T) {
	rt := isolate.NewRuntime()
	if d := rt.CurrentDomain(); d != api.NoDomain {
		t.Fatalf("plain goroutine reported %v", d)
	}
}

func TestCurrentDomainInsideDomain(t *testing.T) {
	rt := isolate.NewRuntime()
	defer rt.Close()
	d1, err := rt.NewDomain("first")
	if err != nil {
		t.Fatal(err)
	}
	d2, err := rt.NewDomain("second")
	if err != nil {
		t.Fatal(err)
	}
	if d1.ID() == d2.ID() || d1.ID() == api.NoDomain {
		t.Fatalf("ids not distinct: %v %v", d1.ID(), d2.ID())
	}
	for _, d := range []*isolate.Domain{d1, d2} {
		var seen api.Domain
		if err := d.Run(func() error { seen = rt.CurrentDomain(); return nil }); err != nil {
			t.Fatal(err)
		}
		if seen != d.ID() {
			t.Errorf("inside %s: CurrentDomain = %v, want %v", d.Name(), seen, d.ID())
		}
	}

	// Goroutines spawned from a domain are not part of it.
	var spawned api.Domain
	err = d1.Run(func() error {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			spawned = rt.CurrentDomain()
		}()
		wg.Wait()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if spawned != api.NoDomain {
		t.Errorf("spawned goroutine reported %v", spawned)
	}
}

func TestDomainRunsInOrder(t *testing.T) {
	rt := isolate.NewRuntime()
	defer rt.Close()
	d, _ := rt.NewDomain("ordered")
	var order []int
	var results []<-chan error
	for i := 0; i < 20; i++ {
		i := i
		results = append(results, d.Go(func() error {
			order = append(order, i)
			return nil
		}))
	}
	for _, r := range results {
		if err := <-r; err != nil {
			t.Fatal(err)
		}
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestDomainPanicBecomesError(t *testing.T) {
	rt := isolate.NewRuntime()
	defer rt.Close()
	d, _ := rt.NewDomain("panicky")
	err := d.Run(func() error { panic("boom") })
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("want panic error, got %v", err)
	}
	// The domain keeps serving.
	if err := d.Run(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
}

func TestClosedDomainRejectsWork(t *testing.T) {
	rt := isolate.NewRuntime()
	d, _ := rt.NewDomain("closing")
	d.Close()
	err := d.Run(func() error { return nil })
	if !errors.Is(err, api.ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
	var structured *api.Error
	if !errors.As(err, &structured) || structured.Code != api.ErrCodeClosed || structured.Context["domain"] != "closing" {
		t.Fatalf("want structured closed error naming the domain, got %#v", err)
	}
	if n := len(rt.Domains()); n != 0 {
		t.Fatalf("closed domain still listed (%d)", n)
	}
}

func TestDomainsListing(t *testing.T) {
	rt := isolate.NewRuntime()
	defer rt.Close()
	a, _ := rt.NewDomain("a")
	b, _ := rt.NewDomain("")
	ds := rt.Domains()
	if len(ds) != 2 || ds[0] != a || ds[1] != b {
		t.Fatalf("Domains = %v", ds)
	}
	if b.Name() != b.ID().String() {
		t.Errorf("default name = %q", b.Name())
	}
}

func TestWithPredicate(t *testing.T) {
	rt := isolate.NewRuntime(isolate.WithPredicate(func(v any) bool {
		_, ok := v.(string)
		return ok
	}))
	if !rt.IsShareable("s") || rt.IsShareable(1) {
		t.Fatal("custom predicate not used")
	}
	if !isolate.NewRuntime().IsShareable(1) {
		t.Fatal("default predicate must accept ints")
	}
}
