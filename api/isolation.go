// Package api
// Author: momentics <momentics@gmail.com>
//
// Isolation domain contracts consumed by the Atom gate.

package api

import "strconv"

// Domain identifies an isolated concurrency domain.
type Domain uint64

// NoDomain is the zero Domain: the caller runs outside any domain, or a
// cached owner binding has been invalidated.
const NoDomain Domain = 0

// String renders the domain for error context and logs.
func (d Domain) String() string {
	if d == NoDomain {
		return "none"
	}
	return "domain-" + strconv.FormatUint(uint64(d), 10)
}

// Isolation is supplied by the host runtime. Implementations must be safe
// for concurrent use and must not block.
type Isolation interface {
	// CurrentDomain reports the domain of the calling execution context.
	CurrentDomain() Domain

	// IsShareable reports whether v may be observed from more than one domain.
	IsShareable(v any) bool
}

// Shareable is implemented by values that certify their own shareability.
type Shareable interface {
	Shareable() bool
}

// ShareableBy is implemented by immutable containers whose shareability
// depends only on their elements. The host predicate is passed in so elements
// are judged the same way the container is.
type ShareableBy interface {
	ShareableBy(pred func(v any) bool) bool
}
