package api

import (
	"net/http"

	"github.com/MrEthical07/goSession/schema"
	"github.com/MrEthical07/goSession/transport"
)

// Meta is the optional list metadata of an envelope.
type Meta struct {
	TotalCount int64 `json:"total_count"`
}

// Envelope is the typed form of the {success, message, data, meta?} wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// ValidateResponse classifies res against the envelope descriptor env.
//
// The body is parsed first; a non-JSON body is a Parse error whatever the
// status. A non-2xx status is an API error carrying the body's string
// message (or [DefaultFailureMessage]), and 401 is reported as Auth. A 2xx
// body that does not match env is a Validation error listing the violating
// paths. The returned error is always an [*Error].
func ValidateResponse[T any](res transport.Response, env schema.Descriptor) (Envelope[T], error) {
	var out Envelope[T]

	parsed, err := schema.ParseJSON([]byte(res.Body))
	if err != nil {
		return out, &Error{Kind: KindParse, Status: res.Status, Err: err}
	}

	if res.Status < 200 || res.Status > 299 {
		kind := KindAPI
		if res.Status == http.StatusUnauthorized {
			kind = KindAuth
		}
		return out, &Error{Kind: kind, Status: res.Status, Message: failureMessage(parsed)}
	}

	normalized, vs := schema.Validate(env, parsed)
	if len(vs) > 0 {
		return out, &Error{Kind: KindValidation, Status: res.Status, Violations: vs}
	}
	if err := schema.Convert(normalized, &out); err != nil {
		return out, &Error{Kind: KindValidation, Status: res.Status, Err: err}
	}
	return out, nil
}

func failureMessage(parsed any) string {
	if m, ok := parsed.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok {
			return msg
		}
	}
	return DefaultFailureMessage
}
