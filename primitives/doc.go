// File: primitives/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package primitives builds small concurrent building blocks on top of atom.Atom:
// a boolean flag, a count-down latch, a persistent linked list and a lock-free
// stack. Every primitive accepts atom Options, so they honour the same
// isolation, collector and observer capabilities as a bare Atom.
package primitives
