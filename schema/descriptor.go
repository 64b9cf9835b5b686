package schema

import (
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Descriptor describes the accepted shape of a decoded JSON value.
//
// Implementations are immutable after construction and safe for concurrent use.
type Descriptor interface {
	// Kind names the expected shape in violation reports ("string", "object", "string | object").
	Kind() string

	check(path string, v any) (any, Violations)
}

// Validate matches v against d. On success it returns the normalized value and
// a nil Violations; otherwise the normalized value is nil.
func Validate(d Descriptor, v any) (any, Violations) {
	if d == nil {
		return nil, Violations{{Path: "", Expected: "descriptor", Got: "nil"}}
	}
	out, vs := d.check("", v)
	if len(vs) > 0 {
		return nil, vs
	}
	return out, nil
}

func mismatch(path, expected string, v any) Violations {
	return Violations{{Path: path, Expected: expected, Got: kindOf(v)}}
}

type stringDescriptor struct {
	nonEmpty bool
}

// String accepts any JSON string.
func String() Descriptor { return stringDescriptor{} }

// NonEmptyString accepts a JSON string containing at least one non-space character.
func NonEmptyString() Descriptor { return stringDescriptor{nonEmpty: true} }

func (d stringDescriptor) Kind() string {
	if d.nonEmpty {
		return "non-empty string"
	}
	return "string"
}

func (d stringDescriptor) check(path string, v any) (any, Violations) {
	s, ok := v.(string)
	if !ok {
		return nil, mismatch(path, d.Kind(), v)
	}
	if d.nonEmpty && strings.TrimSpace(s) == "" {
		return nil, Violations{{Path: path, Expected: d.Kind(), Got: "empty string"}}
	}
	return s, nil
}

type dateTimeDescriptor struct{}

// DateTime accepts an RFC 3339 timestamp string.
func DateTime() Descriptor { return dateTimeDescriptor{} }

func (dateTimeDescriptor) Kind() string { return "date-time string" }

func (d dateTimeDescriptor) check(path string, v any) (any, Violations) {
	s, ok := v.(string)
	if !ok {
		return nil, mismatch(path, d.Kind(), v)
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		return nil, Violations{{Path: path, Expected: d.Kind(), Got: "malformed string"}}
	}
	return s, nil
}

type boolDescriptor struct{}

// Bool accepts true or false. Strings such as "yes" or "true" are rejected.
func Bool() Descriptor { return boolDescriptor{} }

func (boolDescriptor) Kind() string { return "boolean" }

func (d boolDescriptor) check(path string, v any) (any, Violations) {
	b, ok := v.(bool)
	if !ok {
		return nil, mismatch(path, d.Kind(), v)
	}
	return b, nil
}

type intDescriptor struct{}

// Int accepts a JSON number without a fractional part. The normalized value is int64.
func Int() Descriptor { return intDescriptor{} }

func (intDescriptor) Kind() string { return "integer" }

func (d intDescriptor) check(path string, v any) (any, Violations) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return nil, Violations{{Path: path, Expected: d.Kind(), Got: "fractional number"}}
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), nil
		}
		return nil, Violations{{Path: path, Expected: d.Kind(), Got: "fractional number"}}
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return nil, mismatch(path, d.Kind(), v)
	}
}

type intRangeDescriptor struct {
	min, max int64
}

// IntRange accepts an integer within [min, max] inclusive.
func IntRange(min, max int64) Descriptor { return intRangeDescriptor{min: min, max: max} }

func (d intRangeDescriptor) Kind() string {
	return "integer in [" + strconv.FormatInt(d.min, 10) + ", " + strconv.FormatInt(d.max, 10) + "]"
}

func (d intRangeDescriptor) check(path string, v any) (any, Violations) {
	out, vs := intDescriptor{}.check(path, v)
	if len(vs) > 0 {
		return nil, vs
	}
	if n := out.(int64); n < d.min || n > d.max {
		return nil, Violations{{Path: path, Expected: d.Kind(), Got: strconv.FormatInt(n, 10)}}
	}
	return out, nil
}

type numberDescriptor struct{}

// Number accepts any JSON number. The normalized value is float64.
func Number() Descriptor { return numberDescriptor{} }

func (numberDescriptor) Kind() string { return "number" }

func (d numberDescriptor) check(path string, v any) (any, Violations) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, Violations{{Path: path, Expected: d.Kind(), Got: "malformed number"}}
		}
		return f, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return nil, mismatch(path, d.Kind(), v)
	}
}

type literalDescriptor struct {
	value string
}

// Literal accepts exactly the given string. Combined with [Union] it expresses
// tagged variants keyed by a discriminator field.
func Literal(value string) Descriptor { return literalDescriptor{value: value} }

func (d literalDescriptor) Kind() string { return strconv.Quote(d.value) }

func (d literalDescriptor) check(path string, v any) (any, Violations) {
	s, ok := v.(string)
	if !ok {
		return nil, mismatch(path, d.Kind(), v)
	}
	if s != d.value {
		return nil, Violations{{Path: path, Expected: d.Kind(), Got: strconv.Quote(s)}}
	}
	return s, nil
}
