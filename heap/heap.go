// File: heap/heap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Arena-backed object model: allocation, field access, deep freeze and structural equality.

package heap

import (
	"fmt"
	"log"
	"reflect"
	"strconv"
	"sync"

	"github.com/momentics/atomcell/api"
	"github.com/momentics/atomcell/internal/goid"
	"github.com/momentics/atomcell/internal/shareable"
)

// Ref addresses an object. Nil is the zero Ref and never addresses anything.
type Ref uint64

// Nil is the empty reference.
const Nil Ref = 0

func (r Ref) String() string {
	if r == Nil {
		return "nil"
	}
	return "@" + strconv.FormatUint(uint64(r), 10)
}

// ErrFrozen is returned when mutating a frozen object.
var ErrFrozen = fmt.Errorf("heap: object is frozen")

// Object is a copy of an arena entry.
type Object struct {
	Data   any
	Fields []Ref
	Frozen bool
}

// Value is a handle-free deep copy of an object graph, used to compare
// contents across collections.
type Value struct {
	Data   any
	Fields []*Value
}

type object struct {
	data   any
	fields []Ref
	frozen bool
}

// Heap is the arena plus the collector state.
type Heap struct {
	// world is held shared by mutators and exclusively by Collect.
	world sync.RWMutex

	holdersMu sync.Mutex
	holders   map[uint64]int // goroutine id -> mutator window depth

	mu    sync.RWMutex
	arena []object

	rootsMu  sync.Mutex
	roots    map[uint64]api.Root
	nextRoot uint64

	remMu      sync.Mutex
	remembered map[Ref]struct{}
	writes     uint64

	statsMu sync.Mutex
	stats   Stats
	logger  *log.Logger
}

// Option configures a Heap.
type Option func(*Heap)

// WithLogger enables a summary line per collection.
func WithLogger(l *log.Logger) Option {
	return func(h *Heap) { h.logger = l }
}

// New creates an empty heap.
func New(opts ...Option) *Heap {
	h := &Heap{
		holders:    make(map[uint64]int),
		roots:      make(map[uint64]api.Root),
		remembered: make(map[Ref]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mutate runs fn inside the mutator window. Collections wait for fn to return.
// Refs obtained inside fn stay valid only until fn returns.
func (h *Heap) Mutate(fn func()) {
	exit := h.EnterMutator()
	defer exit()
	fn()
}

// EnterMutator implements api.Collector. A goroutine already inside the
// window, through Mutate or an earlier EnterMutator, passes straight through;
// only the outermost exit releases the window.
func (h *Heap) EnterMutator() func() {
	g := goid.Current()
	h.holdersMu.Lock()
	nested := h.holders[g] > 0
	if nested {
		h.holders[g]++
	}
	h.holdersMu.Unlock()
	if !nested {
		h.world.RLock()
		h.holdersMu.Lock()
		h.holders[g] = 1
		h.holdersMu.Unlock()
	}
	return func() { h.exitMutator(g) }
}

func (h *Heap) exitMutator(g uint64) {
	h.holdersMu.Lock()
	depth := h.holders[g] - 1
	if depth > 0 {
		h.holders[g] = depth
	} else {
		delete(h.holders, g)
	}
	h.holdersMu.Unlock()
	if depth == 0 {
		h.world.RUnlock()
	}
}

// Alloc places a new object holding data and fields in the arena.
func (h *Heap) Alloc(data any, fields ...Ref) Ref {
	h.mu.Lock()
	defer h.mu.Unlock()
	fs := make([]Ref, len(fields))
	copy(fs, fields)
	h.arena = append(h.arena, object{data: data, fields: fs})
	return Ref(len(h.arena))
}

// Load returns a copy of the object at r.
func (h *Heap) Load(r Ref) (Object, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	o, ok := h.lookup(r)
	if !ok {
		return Object{}, false
	}
	fs := make([]Ref, len(o.fields))
	copy(fs, o.fields)
	return Object{Data: o.data, Fields: fs, Frozen: o.frozen}, true
}

// Field returns the i-th field of r, Nil when out of range.
func (h *Heap) Field(r Ref, i int) Ref {
	h.mu.RLock()
	defer h.mu.RUnlock()
	o, ok := h.lookup(r)
	if !ok || i < 0 || i >= len(o.fields) {
		return Nil
	}
	return o.fields[i]
}

// SetField replaces the i-th field of r.
func (h *Heap) SetField(r Ref, i int, v Ref) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	o, ok := h.lookup(r)
	if !ok || i < 0 || i >= len(o.fields) {
		return api.ErrInvalidArgument
	}
	if o.frozen {
		return ErrFrozen
	}
	o.fields[i] = v
	return nil
}

// Freeze marks r and everything reachable from it immutable.
func (h *Heap) Freeze(r Ref) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stack := []Ref{r}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		o, ok := h.lookup(cur)
		if !ok || o.frozen {
			continue
		}
		o.frozen = true
		stack = append(stack, o.fields...)
	}
}

// IsShareable is the heap's shareability predicate: Nil and frozen objects
// are shareable, other values are judged reflectively with every Ref they
// contain, including elements of api.ShareableBy containers, held to the same rule.
func (h *Heap) IsShareable(v any) bool {
	return shareable.With(v, h.judgeRef)
}

func (h *Heap) judgeRef(v any) (ok, handled bool) {
	r, isRef := v.(Ref)
	if !isRef {
		return false, false
	}
	if r == Nil {
		return true, true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	o, found := h.lookup(r)
	return found && o.frozen, true
}

// Equal compares the object graphs at a and b structurally.
func (h *Heap) Equal(a, b Ref) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.equal(a, b, make(map[[2]Ref]bool))
}

func (h *Heap) equal(a, b Ref, seen map[[2]Ref]bool) bool {
	if a == b {
		return true
	}
	key := [2]Ref{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true
	oa, okA := h.lookup(a)
	ob, okB := h.lookup(b)
	if !okA || !okB {
		return false
	}
	if !reflect.DeepEqual(oa.data, ob.data) || len(oa.fields) != len(ob.fields) {
		return false
	}
	for i := range oa.fields {
		if !h.equal(oa.fields[i], ob.fields[i], seen) {
			return false
		}
	}
	return true
}

// Snapshot copies the graph at r out of the arena. Cycles are cut at the
// first repeated object.
func (h *Heap) Snapshot(r Ref) *Value {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot(r, make(map[Ref]bool))
}

func (h *Heap) snapshot(r Ref, seen map[Ref]bool) *Value {
	o, ok := h.lookup(r)
	if !ok || seen[r] {
		return nil
	}
	seen[r] = true
	v := &Value{Data: o.data}
	for _, f := range o.fields {
		v.Fields = append(v.Fields, h.snapshot(f, seen))
	}
	delete(seen, r)
	return v
}

// Len reports the number of objects currently in the arena.
func (h *Heap) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.arena)
}

func (h *Heap) lookup(r Ref) (*object, bool) {
	if r == Nil || uint64(r) > uint64(len(h.arena)) {
		return nil, false
	}
	return &h.arena[r-1], true
}
