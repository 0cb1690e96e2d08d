package goid

import (
	"sync"
	"testing"
)

func TestCurrent(t *testing.T) {
	self := Current()
	if self == 0 {
		t.Fatal("failed to parse goroutine id")
	}
	if Current() != self {
		t.Fatal("id changed within one goroutine")
	}

	const n = 8
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			ids[i] = Current()
		}()
	}
	wg.Wait()
	seen := map[uint64]bool{self: true}
	for _, id := range ids {
		if id == 0 || seen[id] {
			t.Fatalf("ids not distinct: self=%d others=%v", self, ids)
		}
		seen[id] = true
	}
}
