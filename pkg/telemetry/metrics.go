package telemetry

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Metrics aggregates counters for one generation run. All methods are
// safe for concurrent use by the worker pool.
type Metrics struct {
	processesSucceeded int64
	processesFailed    int64
	cases              int64
	events             int64
	labelerCalls       int64
	labelerFallbacks   int64

	mu        sync.Mutex
	totalCost float64
	latencies []time.Duration
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{
		latencies: make([]time.Duration, 0, 1000),
	}
}

// JobSucceeded records one completed process and its wall time.
func (m *Metrics) JobSucceeded(elapsed time.Duration) {
	atomic.AddInt64(&m.processesSucceeded, 1)
	m.recordLatency(elapsed)
}

// JobFailed records one failed process and its wall time.
func (m *Metrics) JobFailed(elapsed time.Duration) {
	atomic.AddInt64(&m.processesFailed, 1)
	m.recordLatency(elapsed)
}

// AddCases adds n generated cases.
func (m *Metrics) AddCases(n int64) {
	atomic.AddInt64(&m.cases, n)
}

// AddEvents adds n generated events.
func (m *Metrics) AddEvents(n int64) {
	atomic.AddInt64(&m.events, n)
}

// LabelerCall records one chat completion request.
func (m *Metrics) LabelerCall() {
	atomic.AddInt64(&m.labelerCalls, 1)
}

// LabelerFallback records one request that fell back to a default label.
func (m *Metrics) LabelerFallback() {
	atomic.AddInt64(&m.labelerFallbacks, 1)
}

// AddCost adds the simulated cost of one dataset.
func (m *Metrics) AddCost(v float64) {
	m.mu.Lock()
	m.totalCost += v
	m.mu.Unlock()
}

func (m *Metrics) recordLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Keep the last 1000 samples
	if len(m.latencies) >= 1000 {
		m.latencies = m.latencies[1:]
	}
	m.latencies = append(m.latencies, d)
}

// Percentile calculates the p-th percentile of recorded job latencies.
func (m *Metrics) Percentile(p float64) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Snapshot is a point-in-time copy of the collected metrics.
type Snapshot struct {
	ProcessesSucceeded int64         `json:"processes_succeeded"`
	ProcessesFailed    int64         `json:"processes_failed"`
	Cases              int64         `json:"cases"`
	Events             int64         `json:"events"`
	LabelerCalls       int64         `json:"labeler_calls"`
	LabelerFallbacks   int64         `json:"labeler_fallbacks"`
	TotalCost          float64       `json:"total_cost"`
	P50Latency         time.Duration `json:"p50_latency_ns"`
	P95Latency         time.Duration `json:"p95_latency_ns"`
	P99Latency         time.Duration `json:"p99_latency_ns"`
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	cost := m.totalCost
	m.mu.Unlock()

	return Snapshot{
		ProcessesSucceeded: atomic.LoadInt64(&m.processesSucceeded),
		ProcessesFailed:    atomic.LoadInt64(&m.processesFailed),
		Cases:              atomic.LoadInt64(&m.cases),
		Events:             atomic.LoadInt64(&m.events),
		LabelerCalls:       atomic.LoadInt64(&m.labelerCalls),
		LabelerFallbacks:   atomic.LoadInt64(&m.labelerFallbacks),
		TotalCost:          cost,
		P50Latency:         m.Percentile(0.50),
		P95Latency:         m.Percentile(0.95),
		P99Latency:         m.Percentile(0.99),
	}
}

// ToJSON serializes the snapshot.
func (s Snapshot) ToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(s)
}
