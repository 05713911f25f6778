package logging

import (
	"maps"
	"sync"
)

// Metrics is a set of named counters shared by the battle runner and its
// telemetry adapters.
type Metrics struct {
	mu     sync.Mutex
	values map[string]uint64
}

func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] += delta
}

func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]uint64)
	}
	m.values[key] = value
}

// RecordRouter stores the router's counters under logging_* keys.
func (m *Metrics) RecordRouter(stats RouterStats) {
	m.TelemetryStore("logging_events_total", stats.EventsTotal)
	m.TelemetryStore("logging_dropped_total", stats.DroppedTotal)
	for name, s := range stats.Sinks {
		m.TelemetryStore("logging_sink_"+name+"_written", s.Written)
		m.TelemetryStore("logging_sink_"+name+"_failed", s.Failed)
		m.TelemetryStore("logging_sink_"+name+"_dropped", s.Dropped)
	}
}

// Snapshot returns a copy of every counter.
func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values)
}
