package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries a per-exchange correlation ID.
const RequestIDHeader = "X-Request-ID"

const tracerName = "github.com/MrEthical07/goSession/transport"

// HTTPTransport performs exchanges with a net/http client.
//
// HTTPTransport is safe for concurrent use.
type HTTPTransport struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	tracer       trace.Tracer
}

// Option configures an [HTTPTransport].
type Option func(*HTTPTransport)

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout bounds each exchange, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		if d > 0 {
			clone := *t.client
			clone.Timeout = d
			t.client = &clone
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(t *HTTPTransport) { t.userAgent = ua }
}

// WithMaxBodyBytes caps the response body size. Larger bodies are truncated
// and reported as a network error.
func WithMaxBodyBytes(n int64) Option {
	return func(t *HTTPTransport) {
		if n > 0 {
			t.maxBodyBytes = n
		}
	}
}

// WithTracerProvider selects the provider for exchange spans. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *HTTPTransport) {
		if tp != nil {
			t.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewHTTPTransport returns a transport with a 30s timeout and 8 MiB body cap.
func NewHTTPTransport(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		client:       &http.Client{Timeout: 30 * time.Second},
		maxBodyBytes: 8 << 20,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Do performs exactly one HTTP exchange.
func (t *HTTPTransport) Do(ctx context.Context, req Request) (Response, error) {
	ctx, span := t.tracer.Start(ctx, "transport.do", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
		))
	defer span.End()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return Response{}, &NetworkError{Method: req.Method, URL: req.URL, Err: err}
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get(RequestIDHeader) == "" {
		httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	span.SetAttributes(attribute.String("http.request.id", httpReq.Header.Get(RequestIDHeader)))

	resp, err := t.client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exchange failed")
		return Response{}, &NetworkError{Method: req.Method, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodyBytes+1))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return Response{}, &NetworkError{Method: req.Method, URL: req.URL, Err: err}
	}
	if int64(len(raw)) > t.maxBodyBytes {
		span.SetStatus(codes.Error, "body too large")
		return Response{}, &NetworkError{Method: req.Method, URL: req.URL, Err: ErrBodyTooLarge}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   string(raw),
	}, nil
}
