// File: atom/gate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ownership-or-shareable gate consulted on every store and every load.

package atom

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/atomcell/api"
)

// gate caches the domain that created the Atom. While the cache holds, stores
// and loads from that domain skip the shareability predicate. The first access
// from any other domain clears the cache for good.
type gate struct {
	iso   api.Isolation
	owner atomic.Uint64
}

func newGate(iso api.Isolation) *gate {
	g := &gate{iso: iso}
	g.owner.Store(uint64(iso.CurrentDomain()))
	return g
}

// admit returns a violation error when v may not be stored or exposed from
// the calling domain.
func (g *gate) admit(op string, v any) error {
	owner := api.Domain(g.owner.Load())
	check := owner == api.NoDomain
	current := owner
	if !check {
		current = g.iso.CurrentDomain()
		if current != owner {
			check = true
			g.owner.CompareAndSwap(uint64(owner), uint64(api.NoDomain))
		}
	}
	if check && !g.iso.IsShareable(v) {
		if owner == api.NoDomain {
			current = g.iso.CurrentDomain()
		}
		return api.NewError(api.ErrCodeShareabilityViolation, api.ErrShareabilityViolation.Error()).
			WithContext("op", op).
			WithContext("domain", current.String()).
			WithContext("owner", owner.String()).
			WithContext("type", fmt.Sprintf("%T", v))
	}
	return nil
}

// bound reports the cached owner, NoDomain once invalidated.
func (g *gate) bound() api.Domain {
	return api.Domain(g.owner.Load())
}
