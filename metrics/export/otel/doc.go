// Package otel mirrors console metrics into OpenTelemetry.
//
// [NewOTelExporter] registers one Int64ObservableCounter per console counter
// and flattens the latency histogram into cumulative bucket gauges plus
// _count and _sum. A single callback reads [goSession.Console.MetricsSnapshot]
// on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate console state.
package otel
