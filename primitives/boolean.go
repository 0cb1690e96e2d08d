// File: primitives/boolean.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package primitives

import "github.com/momentics/atomcell/atom"

// Boolean is an atomically updated flag.
type Boolean struct {
	atom *atom.Atom[bool]
}

// NewBoolean creates a flag holding v.
func NewBoolean(v bool, opts ...atom.Option) (*Boolean, error) {
	a, err := atom.New(v, opts...)
	if err != nil {
		return nil, err
	}
	return &Boolean{atom: a}, nil
}

// bool values always pass the shareability gate, so the errors below cannot occur.

// Value returns the current flag.
func (b *Boolean) Value() bool {
	v, _ := b.atom.Get()
	return v
}

func (b *Boolean) IsTrue() bool  { return b.Value() }
func (b *Boolean) IsFalse() bool { return !b.Value() }

// MakeTrue sets the flag.
func (b *Boolean) MakeTrue() bool {
	v, _ := b.atom.Swap(func(bool) bool { return true })
	return v
}

// MakeFalse clears the flag.
func (b *Boolean) MakeFalse() bool {
	v, _ := b.atom.Swap(func(bool) bool { return false })
	return v
}

// Toggle flips the flag and returns the new value.
func (b *Boolean) Toggle() bool {
	v, _ := b.atom.Swap(func(cur bool) bool { return !cur })
	return v
}

// Shareable reports whether the flag may cross domain boundaries.
func (b *Boolean) Shareable() bool { return b.atom.Shareable() }
