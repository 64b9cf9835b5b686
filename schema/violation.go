package schema

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Violation names a single place where a value did not match its descriptor.
type Violation struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "(root)"
	}
	return path + ": expected " + v.Expected + ", got " + v.Got
}

// Violations is the failure result of [Validate]. It implements error so it can
// travel through wrapped error chains.
type Violations []Violation

func (vs Violations) Error() string {
	switch len(vs) {
	case 0:
		return "schema: no violations"
	case 1:
		return "schema: " + vs[0].String()
	}

	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("schema: %d violations: %s", len(vs), strings.Join(parts, "; "))
}

// Paths returns the violating paths in report order.
func (vs Violations) Paths() []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Path)
	}
	return out
}

// Has reports whether path is among the violating paths.
func (vs Violations) Has(path string) bool {
	for _, v := range vs {
		if v.Path == path {
			return true
		}
	}
	return false
}

// Prefix returns a copy of vs with every path nested under prefix.
func (vs Violations) Prefix(prefix string) Violations {
	if prefix == "" || len(vs) == 0 {
		return vs
	}
	out := make(Violations, len(vs))
	for i, v := range vs {
		v.Path = joinPath(prefix, v.Path)
		out[i] = v
	}
	return out
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	if name == "" {
		return parent
	}
	if strings.HasPrefix(name, "[") {
		return parent + name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// kindOf names the JSON kind of a decoded value for violation reports.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
