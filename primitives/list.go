// File: primitives/list.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package primitives

import "github.com/momentics/atomcell/internal/shareable"

type node[T any] struct {
	value T
	next  *node[T]
}

// List is a persistent singly-linked list. Every operation returns a new
// List and never modifies nodes reachable from an existing one, so a List
// value can be published through an Atom and read concurrently.
type List[T any] struct {
	head *node[T]
}

// Prepend returns a list with v in front of l.
func (l List[T]) Prepend(v T) List[T] {
	return List[T]{head: &node[T]{value: v, next: l.head}}
}

// First returns the head element; ok is false on an empty list.
func (l List[T]) First() (v T, ok bool) {
	if l.head == nil {
		return v, false
	}
	return l.head.value, true
}

// Rest returns l without its head. Rest of an empty list is empty.
func (l List[T]) Rest() List[T] {
	if l.head == nil {
		return l
	}
	return List[T]{head: l.head.next}
}

func (l List[T]) Empty() bool { return l.head == nil }

// Len walks the list.
func (l List[T]) Len() int {
	n := 0
	for cur := l.head; cur != nil; cur = cur.next {
		n++
	}
	return n
}

// Slice copies the elements front to back.
func (l List[T]) Slice() []T {
	out := make([]T, 0, l.Len())
	for cur := l.head; cur != nil; cur = cur.next {
		out = append(out, cur.value)
	}
	return out
}

// ShareableBy implements api.ShareableBy: the nodes are immutable, so the
// list is shareable when pred accepts every element.
func (l List[T]) ShareableBy(pred func(v any) bool) bool {
	for cur := l.head; cur != nil; cur = cur.next {
		if !pred(cur.value) {
			return false
		}
	}
	return true
}

// Shareable judges the elements with the default predicate.
func (l List[T]) Shareable() bool {
	return l.ShareableBy(shareable.Is)
}
