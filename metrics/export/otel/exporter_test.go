package otel

import (
	"context"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goSession "github.com/MrEthical07/goSession"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goSession.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goSession.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goSession.MetricsSnapshot{
		Counters:      make(map[goSession.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms:    make(map[goSession.MetricID][]uint64, len(f.snapshot.Histograms)),
		HistogramSums: make(map[goSession.MetricID]time.Duration, len(f.snapshot.HistogramSums)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	for k, v := range f.snapshot.HistogramSums {
		out.HistogramSums[k] = v
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findInt64(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricSignInSuccess: 3,
			},
			Histograms: map[goSession.MetricID][]uint64{
				goSession.MetricRequestLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("gosession-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if v, ok := findInt64(rm, "gosession_sign_in_success_total"); !ok || v != 3 {
		t.Fatalf("expected sign-in counter 3, got %d (found=%v)", v, ok)
	}
	if v, ok := findInt64(rm, "gosession_request_latency_seconds_count"); !ok || v != 8 {
		t.Fatalf("expected latency count 8, got %d (found=%v)", v, ok)
	}
	if v, ok := findInt64(rm, "gosession_request_latency_seconds_bucket_le_0_1"); !ok || v != 3 {
		t.Fatalf("expected cumulative bucket 3, got %d (found=%v)", v, ok)
	}
	if v, ok := findInt64(rm, "gosession_audit_dropped_total"); !ok || v != 1 {
		t.Fatalf("expected audit dropped 1, got %d (found=%v)", v, ok)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newMeter()
	if _, err := NewOTelExporterFromSource(provider.Meter("gosession-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewOTelExporter(provider.Meter("gosession-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil console, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newMeter()
	src := &fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricSignInSuccess: 1,
			},
		},
	}

	exp, err := NewOTelExporterFromSource(provider.Meter("gosession-test"), src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goSession.MetricSignInSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
