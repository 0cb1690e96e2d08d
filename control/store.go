// control/store.go
// Author: momentics <momentics@gmail.com>
//
// Config store with atomic snapshot reads and reload listeners.

package control

import (
	"sync"

	"github.com/momentics/atomcell/atom"
)

// ConfigStore holds the current *Config in an Atom. Readers get an immutable
// snapshot; writers replace it wholesale.
type ConfigStore struct {
	current *atom.Atom[Config]

	mu        sync.RWMutex
	listeners []func(Config)
}

// NewConfigStore initializes a store with cfg, or defaults when cfg is nil.
func NewConfigStore(cfg *Config) *ConfigStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	// Config holds only scalars, so construction cannot fail.
	a, _ := atom.New(*cfg)
	return &ConfigStore{current: a}
}

// Snapshot returns a copy of the current config.
func (cs *ConfigStore) Snapshot() Config {
	c, _ := cs.current.Get()
	return c
}

// Update applies fn atomically, validates the result and notifies listeners.
// fn may run more than once and must be pure.
func (cs *ConfigStore) Update(fn func(Config) Config) (Config, error) {
	var invalid error
	next, _ := cs.current.Swap(func(cur Config) Config {
		cand := fn(cur)
		if invalid = cand.Validate(); invalid != nil {
			return cur
		}
		return cand
	})
	if invalid != nil {
		return next, invalid
	}
	cs.dispatchReload(next)
	return next, nil
}

// Reload replaces the config with the contents of path.
func (cs *ConfigStore) Reload(path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return cs.Snapshot(), err
	}
	return cs.Update(func(Config) Config { return *cfg })
}

// OnReload registers a listener called synchronously after each successful update.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// dispatchReload invokes all listeners.
func (cs *ConfigStore) dispatchReload(cfg Config) {
	cs.mu.RLock()
	listeners := make([]func(Config), len(cs.listeners))
	copy(listeners, cs.listeners)
	cs.mu.RUnlock()
	for _, fn := range listeners {
		fn(cfg)
	}
}
