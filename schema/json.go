package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// ErrTrailingData is returned by [ParseJSON] when the input holds more than one JSON value.
var ErrTrailingData = errors.New("schema: trailing data after JSON value")

// ParseJSON decodes exactly one JSON value, keeping numbers as json.Number so
// that [Int] can distinguish 1 from 1.5 without float rounding.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

// Decode validates v against d and converts the normalized value into T.
// A shape mismatch returns [Violations].
func Decode[T any](d Descriptor, v any) (T, error) {
	var out T
	normalized, vs := Validate(d, v)
	if len(vs) > 0 {
		return out, vs
	}
	if err := Convert(normalized, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeBytes parses data and decodes it like [Decode].
func DecodeBytes[T any](d Descriptor, data []byte) (T, error) {
	var out T
	v, err := ParseJSON(data)
	if err != nil {
		return out, err
	}
	return Decode[T](d, v)
}

// Convert copies a normalized value into the Go value pointed to by dst.
func Convert(normalized any, dst any) error {
	raw, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("schema: encode normalized value: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("schema: decode into %T: %w", dst, err)
	}
	return nil
}

// Check marshals a Go value and validates its JSON form against d. It is used
// to verify request payloads before they leave the client.
func Check(d Descriptor, value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("schema: encode %T: %w", value, err)
	}
	v, err := ParseJSON(raw)
	if err != nil {
		return nil, err
	}
	normalized, vs := Validate(d, v)
	if len(vs) > 0 {
		return nil, vs
	}
	return normalized, nil
}
