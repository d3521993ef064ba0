// Package monitor observes the snap engine's runtime behavior — per-query
// latency, cache hit rate, and error counts — without influencing
// results. Its acceptability predicate is the engine's operational
// health check.
package monitor

import (
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// MaxAverageDetection is the latency ceiling: average detection time
	// must stay below this for the engine to be considered healthy.
	MaxAverageDetection = 10 * time.Millisecond

	// MinHitRate is the cache hit-rate floor for a healthy engine.
	MinHitRate = 0.80

	// defaultWindowSize is the number of recent detections retained for
	// latency statistics.
	defaultWindowSize = 256
)

// Monitor records detection latencies in a rolling window plus running
// cache and error counters. All recording paths are cheap; detection
// runs on every pointer-move event.
type Monitor struct {
	mu      sync.Mutex
	samples []float64 // milliseconds
	head    int
	count   int

	hits   atomic.Int64
	misses atomic.Int64
	errs   atomic.Int64
}

// New returns a Monitor with the default latency window.
func New() *Monitor {
	return NewWithWindow(defaultWindowSize)
}

// NewWithWindow returns a Monitor retaining the last windowSize
// detection durations.
func NewWithWindow(windowSize int) *Monitor {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &Monitor{samples: make([]float64, windowSize)}
}

// RecordDetection appends one detection duration to the rolling window.
func (m *Monitor) RecordDetection(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)

	m.mu.Lock()
	m.samples[m.head] = ms
	m.head = (m.head + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
	m.mu.Unlock()
}

// RecordCacheHit notes a detection answered from cache.
func (m *Monitor) RecordCacheHit() {
	m.hits.Add(1)
}

// RecordCacheMiss notes a detection that had to query the index.
func (m *Monitor) RecordCacheMiss() {
	m.misses.Add(1)
}

// RecordError notes a contained detection-path failure.
func (m *Monitor) RecordError() {
	m.errs.Add(1)
}

// DetectionStats summarizes the latency window in milliseconds.
type DetectionStats struct {
	Samples int     `json:"samples"`
	Average float64 `json:"average_ms"`
	Min     float64 `json:"min_ms"`
	Max     float64 `json:"max_ms"`
}

// Detection returns the current latency statistics.
func (m *Monitor) Detection() DetectionStats {
	m.mu.Lock()
	window := m.window()
	m.mu.Unlock()

	if len(window) == 0 {
		return DetectionStats{}
	}
	return DetectionStats{
		Samples: len(window),
		Average: stat.Mean(window, nil),
		Min:     floats.Min(window),
		Max:     floats.Max(window),
	}
}

// window copies the populated portion of the ring buffer. Caller holds mu.
func (m *Monitor) window() []float64 {
	out := make([]float64, 0, m.count)
	for i := 0; i < m.count; i++ {
		idx := (m.head - m.count + i + len(m.samples)) % len(m.samples)
		out = append(out, m.samples[idx])
	}
	return out
}

// Hits returns the cache hit count since the last reset.
func (m *Monitor) Hits() int64 {
	return m.hits.Load()
}

// Misses returns the cache miss count since the last reset.
func (m *Monitor) Misses() int64 {
	return m.misses.Load()
}

// Errors returns the contained-error count since the last reset.
func (m *Monitor) Errors() int64 {
	return m.errs.Load()
}

// HitRate returns the cache hit rate in [0,1], or 0 before any lookup.
func (m *Monitor) HitRate() float64 {
	hits := m.hits.Load()
	total := hits + m.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// IsPerformanceAcceptable reports whether the engine meets its SLAs:
// average detection below MaxAverageDetection, hit rate above
// MinHitRate, and no errors since the last reset. An idle monitor (no
// lookups recorded) is acceptable as long as it is error-free.
func (m *Monitor) IsPerformanceAcceptable() bool {
	if m.errs.Load() > 0 {
		return false
	}
	if m.hits.Load()+m.misses.Load() == 0 {
		return true
	}
	if m.HitRate() <= MinHitRate {
		return false
	}
	avg := m.Detection().Average
	return avg < float64(MaxAverageDetection)/float64(time.Millisecond)
}

// Reset zeroes all counters and the latency window. Called at the start
// of a measurement window.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.head = 0
	m.count = 0
	m.mu.Unlock()

	m.hits.Store(0)
	m.misses.Store(0)
	m.errs.Store(0)
}

// Snapshot is a serializable view of the monitor for debug overlays and
// external health checks.
type Snapshot struct {
	Detection  DetectionStats `json:"detection"`
	CacheHits  int64          `json:"cache_hits"`
	CacheMiss  int64          `json:"cache_misses"`
	HitRate    float64        `json:"hit_rate"`
	Errors     int64          `json:"errors"`
	Acceptable bool           `json:"acceptable"`
}

// ToSnapshot captures the current state.
func (m *Monitor) ToSnapshot() Snapshot {
	return Snapshot{
		Detection:  m.Detection(),
		CacheHits:  m.Hits(),
		CacheMiss:  m.Misses(),
		HitRate:    m.HitRate(),
		Errors:     m.Errors(),
		Acceptable: m.IsPerformanceAcceptable(),
	}
}
