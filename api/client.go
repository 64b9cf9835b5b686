package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/MrEthical07/goSession/schema"
	"github.com/MrEthical07/goSession/transport"
)

// Observer receives the outcome of every operation. Implementations must be
// safe for concurrent use and must not block.
type Observer interface {
	ObserveCall(op string, elapsed time.Duration, err error)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(op string, elapsed time.Duration, err error)

// ObserveCall calls f.
func (f ObserverFunc) ObserveCall(op string, elapsed time.Duration, err error) {
	f(op, elapsed, err)
}

// Client binds a base URL to a transport. It holds no session state and is
// safe for concurrent use.
type Client struct {
	baseURL   string
	transport transport.Transport
	observer  Observer
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithObserver reports every operation outcome to o.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) { c.observer = o }
}

// NewClient returns a client for the backend rooted at baseURL.
func NewClient(baseURL string, t transport.Transport, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: t,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Call describes one backend operation.
type Call struct {
	// Op names the operation for errors and metrics. Defaults to "METHOD path".
	Op     string
	Method string
	Path   string
	Query  url.Values
	// Token is sent as a bearer credential when non-empty.
	Token string
	// Body is encoded as JSON. When BodySchema is set the body is checked
	// against it first and the normalized form is sent.
	Body       any
	BodySchema schema.Descriptor
	// Response is the envelope descriptor the 2xx body must match.
	Response schema.Descriptor
}

func (call Call) op() string {
	if call.Op != "" {
		return call.Op
	}
	return call.Method + " " + call.Path
}

// Invoke performs call and returns its validated envelope.
func Invoke[T any](ctx context.Context, c *Client, call Call) (out Envelope[T], err error) {
	op := call.op()
	if c.observer != nil {
		start := time.Now()
		defer func() { c.observer.ObserveCall(op, time.Since(start), err) }()
	}

	req, err := c.newRequest(call)
	if err != nil {
		return out, withOp(err, op)
	}

	res, err := c.transport.Do(ctx, req)
	if err != nil {
		return out, &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	out, err = ValidateResponse[T](res, call.Response)
	if err != nil {
		return out, withOp(err, op)
	}
	return out, nil
}

func (c *Client) newRequest(call Call) (transport.Request, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if call.Token != "" {
		header.Set("Authorization", "Bearer "+call.Token)
	}

	var body []byte
	if call.Body != nil {
		payload := call.Body
		if call.BodySchema != nil {
			normalized, err := schema.Check(call.BodySchema, call.Body)
			if err != nil {
				return transport.Request{}, invalidRequest(err)
			}
			payload = normalized
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return transport.Request{}, &Error{Kind: KindInvalidRequest, Err: err}
		}
		body = raw
		header.Set("Content-Type", "application/json")
	}

	target := c.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}
	return transport.Request{Method: call.Method, URL: target, Header: header, Body: body}, nil
}

func invalidRequest(err error) *Error {
	e := &Error{Kind: KindInvalidRequest, Err: err}
	if vs, ok := err.(schema.Violations); ok {
		e.Violations = vs
		e.Err = nil
	}
	return e
}

func withOp(err error, op string) error {
	if e, ok := err.(*Error); ok && e.Op == "" {
		e.Op = op
	}
	return err
}

// Page selects a window of a list operation. Zero fields are omitted.
type Page struct {
	Page   int
	Limit  int
	Search string
}

// Values encodes p as query parameters.
func (p Page) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}
