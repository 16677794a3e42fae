// File: server/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters for broker monitoring. Thread-safe map with dynamic
// key registration; snapshot queries for operators and tests.

package server

import (
	"sync"
	"time"
)

// Metric keys emitted by the server.
const (
	MetricConnectionsAccepted = "connections_accepted"
	MetricConnectionsActive   = "connections_active"
	MetricFramesProcessed     = "frames_processed"
)

// MetricsRegistry holds monotonic and gauge counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{counters: make(map[string]int64)}
}

// Inc increments a counter key by one.
func (mr *MetricsRegistry) Inc(key string) {
	mr.Add(key, 1)
}

// Add adjusts a counter key by delta (negative for gauges).
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns one counter's current value.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// Snapshot returns a copy of all counters.
func (mr *MetricsRegistry) Snapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, v := range mr.counters {
		out[k] = v
	}
	return out
}
