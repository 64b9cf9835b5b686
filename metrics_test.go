package goSession

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricSignInSuccess)

	if got := m.Value(MetricSignInSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricSignOut)
	m.Observe(MetricRequestLatency, time.Second)
	if m.Value(MetricSignOut) != 0 || len(m.Snapshot().Counters) != 0 {
		t.Fatal("nil metrics must record nothing")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRequestSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRequestSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		time.Second,
		2500 * time.Millisecond,
		4 * time.Second,
	}

	for _, d := range observations {
		m.Observe(MetricRequestLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricRequestLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricSignInSuccess)
	m.Inc(MetricRequestValidationError)
	m.Inc(MetricRequestValidationError)
	m.Observe(MetricRequestLatency, 2*time.Millisecond)
	m.Observe(MetricSignInSuccess, time.Second)

	snap := m.Snapshot()

	if snap.Counters[MetricSignInSuccess] != 1 {
		t.Fatalf("expected MetricSignInSuccess=1 got %d", snap.Counters[MetricSignInSuccess])
	}
	if snap.Counters[MetricRequestValidationError] != 2 {
		t.Fatalf("expected MetricRequestValidationError=2 got %d", snap.Counters[MetricRequestValidationError])
	}
	if len(snap.Histograms) != 1 || snap.Histograms[MetricRequestLatency][0] != 1 {
		t.Fatalf("expected only the latency histogram with first bucket=1, got %v", snap.Histograms)
	}
}
