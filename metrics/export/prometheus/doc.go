// Package prometheus exposes console metrics as a client_golang collector.
//
// [NewExporter] wraps a [goSession.Console]; [Exporter.Handler] serves it
// from a private registry. Counter names are gosession_*_total; the single
// histogram is gosession_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry; callers register
//     the collector or mount the Handler.
//   - Mutate console state.
package prometheus
