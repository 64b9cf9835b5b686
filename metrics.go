package goSession

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a console counter.
type MetricID uint16

const (
	// MetricSignInSuccess counts sessions established by sign-in.
	MetricSignInSuccess MetricID = iota
	// MetricSignInFailure counts rejected or failed sign-in exchanges.
	MetricSignInFailure
	// MetricSessionRestored counts sessions rehydrated from storage.
	MetricSessionRestored
	// MetricSignOut counts explicit sign-outs.
	MetricSignOut
	// MetricSessionExpired counts sessions ended by their expiry timer.
	MetricSessionExpired
	// MetricUnauthorized counts sessions ended by an Auth error.
	MetricUnauthorized
	// MetricRequestSuccess counts API operations that returned a validated value.
	MetricRequestSuccess
	MetricRequestNetworkError
	MetricRequestParseError
	MetricRequestAPIError
	MetricRequestAuthError
	// MetricRequestValidationError counts responses that broke their schema (contract drift).
	MetricRequestValidationError
	MetricRequestInvalid
	// MetricRequestLatency is the API operation latency histogram.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets  [histBucketCount]uint64
	sumNanos uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a set of lock-free counters and one latency histogram.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of [Metrics]. Histogram buckets
// are non-cumulative.
type MetricsSnapshot struct {
	Counters      map[MetricID]uint64
	Histograms    map[MetricID][]uint64
	HistogramSums map[MetricID]time.Duration
}

// NewMetrics returns metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram of id. Only [MetricRequestLatency]
// carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRequestLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
	if d > 0 {
		atomic.AddUint64(&m.histograms[id].sumNanos, uint64(d))
	}
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when enabled, the latency histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:      map[MetricID]uint64{},
			Histograms:    map[MetricID][]uint64{},
			HistogramSums: map[MetricID]time.Duration{},
		}
	}

	s := MetricsSnapshot{
		Counters:      make(map[MetricID]uint64, int(metricIDCount)),
		Histograms:    make(map[MetricID][]uint64, 1),
		HistogramSums: make(map[MetricID]time.Duration, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRequestLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
		s.HistogramSums[MetricRequestLatency] = time.Duration(atomic.LoadUint64(&m.histograms[MetricRequestLatency].sumNanos))
	}

	return s
}

// bucketIndex maps d onto upper bounds 25ms, 50ms, 100ms, 250ms, 500ms, 1s,
// 2.5s and +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 25:
		return 0
	case ms <= 50:
		return 1
	case ms <= 100:
		return 2
	case ms <= 250:
		return 3
	case ms <= 500:
		return 4
	case ms <= 1000:
		return 5
	case ms <= 2500:
		return 6
	default:
		return 7
	}
}
