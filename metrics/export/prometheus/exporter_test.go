package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	goSession "github.com/MrEthical07/goSession"
)

type fakeSource struct {
	snapshot goSession.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goSession.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func scrape(t *testing.T, e *Exporter) string {
	t.Helper()
	srv := httptest.NewServer(e.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}
	return string(body)
}

func TestExporterCollectsEverySeries(t *testing.T) {
	e := NewExporterFromSource(fakeSource{})
	// 13 counters, one histogram, audit dropped.
	if got := testutil.CollectAndCount(e); got != 15 {
		t.Fatalf("expected 15 series, got %d", got)
	}
}

func TestExporterRendersCountersAndHistogram(t *testing.T) {
	e := NewExporterFromSource(fakeSource{
		snapshot: goSession.MetricsSnapshot{
			Counters: map[goSession.MetricID]uint64{
				goSession.MetricSignInSuccess:          7,
				goSession.MetricRequestValidationError: 1,
			},
			Histograms: map[goSession.MetricID][]uint64{
				goSession.MetricRequestLatency: {1, 2, 0, 0, 0, 0, 0, 3},
			},
			HistogramSums: map[goSession.MetricID]time.Duration{
				goSession.MetricRequestLatency: 1500 * time.Millisecond,
			},
		},
		dropped: 2,
	})

	out := scrape(t, e)
	for _, want := range []string{
		"gosession_sign_in_success_total 7",
		"gosession_request_validation_error_total 1",
		`gosession_request_latency_seconds_bucket{le="0.025"} 1`,
		`gosession_request_latency_seconds_bucket{le="0.05"} 3`,
		`gosession_request_latency_seconds_bucket{le="+Inf"} 6`,
		"gosession_request_latency_seconds_sum 1.5",
		"gosession_request_latency_seconds_count 6",
		"gosession_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestExporterReadsConsole(t *testing.T) {
	c, err := goSession.New().Build()
	if err != nil {
		t.Fatalf("build console: %v", err)
	}
	defer c.Close()

	c.Metrics().Inc(goSession.MetricSignOut)
	e := NewExporter(c)
	if !strings.Contains(scrape(t, e), "gosession_sign_out_total 1") {
		t.Fatal("expected sign-out counter from console metrics")
	}
}
