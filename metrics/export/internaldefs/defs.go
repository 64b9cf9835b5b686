package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one console counter for exporters.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one console histogram for exporters.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSignInSuccess, Name: "gosession_sign_in_success_total", Help: "Sessions established by sign-in."},
	{ID: goSession.MetricSignInFailure, Name: "gosession_sign_in_failure_total", Help: "Rejected or failed sign-in attempts."},
	{ID: goSession.MetricSessionRestored, Name: "gosession_session_restored_total", Help: "Sessions restored from device storage."},
	{ID: goSession.MetricSignOut, Name: "gosession_sign_out_total", Help: "Explicit sign-outs."},
	{ID: goSession.MetricSessionExpired, Name: "gosession_session_expired_total", Help: "Sessions ended by their expiry timer."},
	{ID: goSession.MetricUnauthorized, Name: "gosession_unauthorized_total", Help: "Sessions ended by an auth error from the backend."},
	{ID: goSession.MetricRequestSuccess, Name: "gosession_request_success_total", Help: "API calls that returned a validated value."},
	{ID: goSession.MetricRequestNetworkError, Name: "gosession_request_network_error_total", Help: "API calls that received no response."},
	{ID: goSession.MetricRequestParseError, Name: "gosession_request_parse_error_total", Help: "API responses that were not JSON."},
	{ID: goSession.MetricRequestAPIError, Name: "gosession_request_api_error_total", Help: "API calls rejected by the backend."},
	{ID: goSession.MetricRequestAuthError, Name: "gosession_request_auth_error_total", Help: "API calls rejected with 401."},
	{ID: goSession.MetricRequestValidationError, Name: "gosession_request_validation_error_total", Help: "API responses that broke their schema."},
	{ID: goSession.MetricRequestInvalid, Name: "gosession_request_invalid_total", Help: "API calls refused before sending because the payload was invalid."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRequestLatency, Name: "gosession_request_latency_seconds", Help: "API call latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const (
	AuditDroppedName = "gosession_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramBounds are the finite upper bounds in seconds; the eighth bucket is +Inf.
var HistogramBounds = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// HistogramBoundSuffix names each bucket, including +Inf, for flat exporters.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed 8-bucket array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
