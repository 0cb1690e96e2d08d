// Package api
// Author: momentics <momentics@gmail.com>
//
// Debug probe registry contract.

package api

// Debug collects named probes and samples them on demand. The facade
// registers probes for the config snapshot, metrics, pool, heap and domains.
type Debug interface {
	// DumpState runs every probe and returns its output keyed by probe name.
	DumpState() map[string]any

	// RegisterProbe adds or replaces the probe called name.
	RegisterProbe(name string, fn func() any)
}
