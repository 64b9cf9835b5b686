package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() goSession.MetricsSnapshot
	AuditDropped() uint64
}

type counterDesc struct {
	id   goSession.MetricID
	desc *prometheus.Desc
}

// Exporter is a [prometheus.Collector] over console metrics. Values are read
// from a snapshot on every scrape.
type Exporter struct {
	source       metricsSource
	counters     []counterDesc
	histograms   []counterDesc
	auditDropped *prometheus.Desc
}

// NewExporter returns a collector reading from console.
func NewExporter(console *goSession.Console) *Exporter {
	return NewExporterFromSource(console)
}

// NewExporterFromSource returns a collector reading from any metrics source.
func NewExporterFromSource(source metricsSource) *Exporter {
	e := &Exporter{
		source:       source,
		counters:     make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:   make([]counterDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped: prometheus.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		e.counters = append(e.counters, counterDesc{id: def.ID, desc: prometheus.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histograms = append(e.histograms, counterDesc{id: def.ID, desc: prometheus.NewDesc(def.Name, def.Help, nil, nil)})
	}
	return e
}

// Describe implements [prometheus.Collector].
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range e.counters {
		ch <- c.desc
	}
	for _, h := range e.histograms {
		ch <- h.desc
	}
	ch <- e.auditDropped
}

// Collect implements [prometheus.Collector].
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e.source == nil {
		return
	}
	snapshot := e.source.MetricsSnapshot()

	for _, c := range e.counters {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.CounterValue, float64(snapshot.Counters[c.id]))
	}

	for _, h := range e.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[h.id]))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[i]
		}
		count := cumulative[len(cumulative)-1]
		sum := snapshot.HistogramSums[h.id].Seconds()
		ch <- prometheus.MustNewConstHistogram(h.desc, count, sum, buckets)
	}

	ch <- prometheus.MustNewConstMetric(e.auditDropped, prometheus.CounterValue, float64(e.source.AuditDropped()))
}

// Handler serves the exporter from a private registry. The global registry
// is never touched.
func (e *Exporter) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(e)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
