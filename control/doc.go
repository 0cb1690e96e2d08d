// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for atomcell.
//
// Provides concurrent-safe state handling primitives including:
//   - YAML configuration with defaults and validation
//   - Immutable snapshot config reads and atomic updates (backed by atom.Atom)
//   - Reload listeners
//   - Metrics counters fed by atom.Observer
//   - Debug probe registration and state export
package control
