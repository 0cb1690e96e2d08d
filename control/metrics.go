// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics registry. Counters are created on first use and updated
// with atomic adds; gauges are sampled on Snapshot.

package control

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/atomcell/atom"
)

// Metric names published by AtomMetrics.
const (
	MetricSwapCommits           = "atom.swap_commits"
	MetricSwapRetries           = "atom.swap_retries"
	MetricSwapMaxAttempts       = "atom.swap_max_attempts"
	MetricShareabilityViolation = "atom.shareability_violations"
)

// MetricsRegistry holds named counters and gauge callbacks.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
	gauges   map[string]func() int64
	updated  atomic.Int64 // unix nanos of the last counter update
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*atomic.Int64),
		gauges:   make(map[string]func() int64),
	}
}

// Counter returns the counter called name, creating it at zero.
func (mr *MetricsRegistry) Counter(name string) *atomic.Int64 {
	mr.mu.RLock()
	c, ok := mr.counters[name]
	mr.mu.RUnlock()
	if ok {
		return c
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if c, ok = mr.counters[name]; !ok {
		c = new(atomic.Int64)
		mr.counters[name] = c
	}
	return c
}

// Add increments name by delta.
func (mr *MetricsRegistry) Add(name string, delta int64) {
	mr.Counter(name).Add(delta)
	mr.updated.Store(time.Now().UnixNano())
}

// Max raises name to v if v is larger.
func (mr *MetricsRegistry) Max(name string, v int64) {
	c := mr.Counter(name)
	for {
		cur := c.Load()
		if v <= cur || c.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Gauge registers a callback sampled on every Snapshot.
func (mr *MetricsRegistry) Gauge(name string, fn func() int64) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.gauges[name] = fn
}

// Snapshot returns current values of all counters and gauges.
func (mr *MetricsRegistry) Snapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters)+len(mr.gauges))
	for k, c := range mr.counters {
		out[k] = c.Load()
	}
	for k, fn := range mr.gauges {
		out[k] = fn()
	}
	return out
}

// Updated reports when a counter last changed through Add.
func (mr *MetricsRegistry) Updated() time.Time {
	ns := mr.updated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// AtomMetrics feeds atom events into a registry.
type AtomMetrics struct {
	reg *MetricsRegistry
}

var _ atom.Observer = (*AtomMetrics)(nil)

// NewAtomMetrics binds an observer to reg.
func NewAtomMetrics(reg *MetricsRegistry) *AtomMetrics {
	return &AtomMetrics{reg: reg}
}

func (m *AtomMetrics) SwapCommitted(attempts int) {
	m.reg.Add(MetricSwapCommits, 1)
	m.reg.Max(MetricSwapMaxAttempts, int64(attempts))
}

func (m *AtomMetrics) SwapRetried() {
	m.reg.Add(MetricSwapRetries, 1)
}

func (m *AtomMetrics) ShareabilityViolated(op string) {
	m.reg.Add(MetricShareabilityViolation, 1)
	m.reg.Add(MetricShareabilityViolation+"."+op, 1)
}
