// File: heap/collector.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stop-the-world mark and sliding compaction with root relocation.

package heap

import (
	"sync"
	"time"

	"github.com/momentics/atomcell/api"
)

// Stats describes the heap and the most recent collection.
type Stats struct {
	Objects     int           // objects currently in the arena
	Live        int           // objects marked by the last collection
	Freed       int           // objects reclaimed by the last collection
	Moved       int           // survivors whose address changed
	Roots       int           // registered roots
	Writes      uint64        // write-barrier notifications since creation
	Remembered  int           // distinct refs recorded since the last collection
	Collections uint64        // completed collections
	Pause       time.Duration // duration of the last stop-the-world pause
}

// RegisterRoot implements api.Collector.
func (h *Heap) RegisterRoot(r api.Root) func() {
	h.rootsMu.Lock()
	h.nextRoot++
	id := h.nextRoot
	h.roots[id] = r
	h.rootsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.rootsMu.Lock()
			delete(h.roots, id)
			h.rootsMu.Unlock()
		})
	}
}

// Written implements api.WriteBarrier. New references are remembered until
// the next collection.
func (h *Heap) Written(old, new any) {
	h.remMu.Lock()
	defer h.remMu.Unlock()
	h.writes++
	for _, r := range refsOf(new) {
		h.remembered[r] = struct{}{}
	}
}

// Remembered reports whether r was published through the write barrier
// since the last collection.
func (h *Heap) Remembered(r Ref) bool {
	h.remMu.Lock()
	defer h.remMu.Unlock()
	_, ok := h.remembered[r]
	return ok
}

// Collect stops the world, marks from the roots, compacts the arena and
// relocates every root. It waits for every goroutine inside the mutator window
// and must not be called from inside it.
func (h *Heap) Collect() Stats {
	h.world.Lock()
	defer h.world.Unlock()
	start := time.Now()

	h.rootsMu.Lock()
	roots := make([]api.Root, 0, len(h.roots))
	for _, r := range h.roots {
		roots = append(roots, r)
	}
	h.rootsMu.Unlock()

	h.mu.Lock()
	marked := make([]bool, len(h.arena))
	var stack []Ref
	push := func(v any) {
		for _, r := range refsOf(v) {
			if _, ok := h.lookup(r); ok && !marked[r-1] {
				marked[r-1] = true
				stack = append(stack, r)
			}
		}
	}
	for _, root := range roots {
		root.Trace(push)
	}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, f := range h.arena[r-1].fields {
			push(f)
		}
	}

	forward := make([]Ref, len(h.arena))
	live, moved := 0, 0
	for i := range h.arena {
		if !marked[i] {
			continue
		}
		if live != i {
			h.arena[live] = h.arena[i]
			moved++
		}
		forward[i] = Ref(live + 1)
		live++
	}
	freed := len(h.arena) - live
	for i := live; i < len(h.arena); i++ {
		h.arena[i] = object{}
	}
	h.arena = h.arena[:live]
	for i := range h.arena {
		for j, f := range h.arena[i].fields {
			if f != Nil {
				h.arena[i].fields[j] = forward[f-1]
			}
		}
	}
	h.mu.Unlock()

	resolve := func(v any) (any, bool) {
		switch x := v.(type) {
		case Ref:
			if x == Nil || uint64(x) > uint64(len(forward)) || forward[x-1] == x {
				return nil, false
			}
			return forward[x-1], true
		case []Ref:
			out := make([]Ref, len(x))
			changed := false
			for i, r := range x {
				out[i] = r
				if r != Nil && uint64(r) <= uint64(len(forward)) && forward[r-1] != r {
					out[i] = forward[r-1]
					changed = true
				}
			}
			return out, changed
		}
		return nil, false
	}
	for _, root := range roots {
		root.Relocate(resolve)
	}

	h.remMu.Lock()
	remembered := len(h.remembered)
	h.remembered = make(map[Ref]struct{})
	writes := h.writes
	h.remMu.Unlock()

	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	h.stats = Stats{
		Objects:     live,
		Live:        live,
		Freed:       freed,
		Moved:       moved,
		Roots:       len(roots),
		Writes:      writes,
		Remembered:  remembered,
		Collections: h.stats.Collections + 1,
		Pause:       time.Since(start),
	}
	if h.logger != nil {
		h.logger.Printf("[heap] gc #%d: live=%d freed=%d moved=%d roots=%d remembered=%d pause=%s",
			h.stats.Collections, live, freed, moved, len(roots), remembered, h.stats.Pause)
	}
	return h.stats
}

// Stats returns the figures of the last collection with current counters.
func (h *Heap) Stats() Stats {
	h.statsMu.Lock()
	s := h.stats
	h.statsMu.Unlock()

	s.Objects = h.Len()
	h.rootsMu.Lock()
	s.Roots = len(h.roots)
	h.rootsMu.Unlock()
	h.remMu.Lock()
	s.Writes = h.writes
	s.Remembered = len(h.remembered)
	h.remMu.Unlock()
	return s
}

func refsOf(v any) []Ref {
	switch x := v.(type) {
	case Ref:
		if x != Nil {
			return []Ref{x}
		}
	case []Ref:
		return x
	}
	return nil
}
