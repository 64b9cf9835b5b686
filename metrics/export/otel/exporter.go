package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goSession.MetricsSnapshot
	AuditDropped() uint64
}

type observedCounter struct {
	id         goSession.MetricID
	instrument metric.Int64ObservableCounter
}

// observedHistogram flattens one console histogram into cumulative bucket
// gauges plus count and sum.
type observedHistogram struct {
	id      goSession.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
	sum     metric.Float64ObservableGauge
}

// OTelExporter mirrors console metrics into OpenTelemetry observables.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers observable instruments on meter that read from
// console on every collection.
func NewOTelExporter(meter metric.Meter, console *goSession.Console) (*OTelExporter, error) {
	if console == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, console)
}

// NewOTelExporterFromSource is [NewOTelExporter] for any metrics source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var observables []metric.Observable

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h, ins, err := newObservedHistogram(meter, def)
		if err != nil {
			return nil, err
		}
		e.histograms = append(e.histograms, h)
		observables = append(observables, ins...)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	e.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func newObservedHistogram(meter metric.Meter, def internaldefs.HistogramDef) (observedHistogram, []metric.Observable, error) {
	h := observedHistogram{id: def.ID}
	ins := make([]metric.Observable, 0, len(h.buckets)+2)

	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		g, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
		if err != nil {
			return h, nil, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
		}
		h.buckets[i] = g
		ins = append(ins, g)
	}

	count, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription("Histogram total sample count."))
	if err != nil {
		return h, nil, fmt.Errorf("create histogram count gauge %s_count: %w", def.Name, err)
	}
	sum, err := meter.Float64ObservableGauge(def.Name+"_sum", metric.WithDescription(def.Help+" Total seconds."), metric.WithUnit("s"))
	if err != nil {
		return h, nil, fmt.Errorf("create histogram sum gauge %s_sum: %w", def.Name, err)
	}
	h.count, h.sum = count, sum
	return h, append(ins, count, sum), nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	for _, h := range e.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[h.id]))
		for i := range cumulative {
			o.ObserveInt64(h.buckets[i], int64(cumulative[i]))
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
		o.ObserveFloat64(h.sum, snapshot.HistogramSums[h.id].Seconds())
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
