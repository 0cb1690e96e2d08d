// File: primitives/stack.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Treiber stack: a persistent List published through an Atom.

package primitives

import "github.com/momentics/atomcell/atom"

// Stack is a lock-free LIFO.
type Stack[T any] struct {
	top *atom.Atom[List[T]]
}

// NewStack creates an empty stack.
func NewStack[T any](opts ...atom.Option) (*Stack[T], error) {
	a, err := atom.New(List[T]{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Stack[T]{top: a}, nil
}

// Push places v on top.
func (s *Stack[T]) Push(v T) error {
	_, err := s.top.Swap(func(cur List[T]) List[T] { return cur.Prepend(v) })
	return err
}

// Pop removes and returns the top element; ok is false when the stack is empty.
func (s *Stack[T]) Pop() (v T, ok bool, err error) {
	var popped T
	var found bool
	_, err = s.top.Swap(func(cur List[T]) List[T] {
		popped, found = cur.First()
		return cur.Rest()
	})
	if err != nil {
		return v, false, err
	}
	return popped, found, nil
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (v T, ok bool, err error) {
	cur, err := s.top.Get()
	if err != nil {
		return v, false, err
	}
	v, ok = cur.First()
	return v, ok, nil
}

// Len returns the number of elements at the time of the call.
func (s *Stack[T]) Len() int {
	cur, _ := s.top.Get()
	return cur.Len()
}

// Shareable reports whether the stack may cross domain boundaries.
func (s *Stack[T]) Shareable() bool { return s.top.Shareable() }
