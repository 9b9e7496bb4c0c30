// Package observability collects in-process counters and timings for
// the command and query buses. The editor runs as a single process, so
// samples aggregate in memory and are exposed through snapshots rather
// than shipped to an external collector.
package observability

import (
	"sort"
	"sync"
	"time"
)

// DurationStats aggregates timing samples for one operation.
type DurationStats struct {
	Count    uint64
	Failures uint64
	Total    time.Duration
	Max      time.Duration
}

// Mean returns the average sample duration.
func (s DurationStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Metrics is the process-wide sample sink. It satisfies both the
// command bus timing recorder and the query bus metrics interfaces.
type Metrics struct {
	mu        sync.Mutex
	counters  map[string]uint64
	durations map[string]*DurationStats
}

// NewMetrics creates an empty metrics sink.
func NewMetrics() *Metrics {
	return &Metrics{
		counters:  make(map[string]uint64),
		durations: make(map[string]*DurationStats),
	}
}

// Record adds a timing sample for a named operation.
func (m *Metrics) Record(name string, elapsed time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.durations[name]
	if !ok {
		stats = &DurationStats{}
		m.durations[name] = stats
	}
	stats.Count++
	stats.Total += elapsed
	if elapsed > stats.Max {
		stats.Max = elapsed
	}
	if !success {
		stats.Failures++
	}
}

// Increment bumps a labeled counter.
func (m *Metrics) Increment(metric, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metric+":"+label]++
}

// StartTimer begins a timing sample that records on Stop.
func (m *Metrics) StartTimer(metric, label string) Timer {
	return &timer{
		metrics: m,
		name:    metric + ":" + label,
		started: time.Now(),
	}
}

// Timer finishes a sample started by StartTimer.
type Timer interface {
	Stop()
}

type timer struct {
	metrics *Metrics
	name    string
	started time.Time
}

func (t *timer) Stop() {
	t.metrics.Record(t.name, time.Since(t.started), true)
}

// CounterSnapshot is one counter's value at snapshot time.
type CounterSnapshot struct {
	Name  string
	Value uint64
}

// DurationSnapshot is one operation's aggregated timings.
type DurationSnapshot struct {
	Name  string
	Stats DurationStats
}

// Snapshot returns all counters and timings, sorted by name.
func (m *Metrics) Snapshot() ([]CounterSnapshot, []DurationSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counters := make([]CounterSnapshot, 0, len(m.counters))
	for name, value := range m.counters {
		counters = append(counters, CounterSnapshot{Name: name, Value: value})
	}
	sort.Slice(counters, func(i, j int) bool { return counters[i].Name < counters[j].Name })

	durations := make([]DurationSnapshot, 0, len(m.durations))
	for name, stats := range m.durations {
		durations = append(durations, DurationSnapshot{Name: name, Stats: *stats})
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i].Name < durations[j].Name })

	return counters, durations
}
