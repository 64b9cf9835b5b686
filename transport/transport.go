// Package transport performs single HTTP exchanges for the API client.
//
// A [Transport] sends exactly one request and returns the raw status and body
// text. It never parses, retries, or caches: retry policy belongs to callers
// because backend operations are not guaranteed to be idempotent.
package transport

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrNetwork matches every [*NetworkError] via errors.Is.
	ErrNetwork = errors.New("network error")
	// ErrBodyTooLarge is wrapped by a NetworkError when a body exceeds the configured cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Request is one outgoing HTTP exchange.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the raw result of an exchange that produced an HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   string
}

// Transport performs one HTTP exchange. Implementations must return a
// [*NetworkError] when no complete response was received.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// Func adapts a function to [Transport].
type Func func(ctx context.Context, req Request) (Response, error)

// Do calls f.
func (f Func) Do(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// NetworkError reports that no response was received (DNS, connection,
// timeout, cancelled context, or a truncated body).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return "network error: " + e.Method + " " + e.URL
	}
	return "network error: " + e.Method + " " + e.URL + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNetwork) match any NetworkError.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
