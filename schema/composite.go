package schema

import "strings"

// Field is one member of an [ObjectDescriptor] together with its presence rule.
type Field struct {
	Name string
	Desc Descriptor

	optional   bool
	nullable   bool
	hasDefault bool
	def        any
}

// Required declares a field that must be present and match d.
func Required(name string, d Descriptor) Field {
	return Field{Name: name, Desc: d}
}

// Optional declares a field that may be absent. A present field must match d;
// null is rejected.
func Optional(name string, d Descriptor) Field {
	return Field{Name: name, Desc: d, optional: true}
}

// Nullable declares a field that may be absent or null.
func Nullable(name string, d Descriptor) Field {
	return Field{Name: name, Desc: d, optional: true, nullable: true}
}

// Default declares a field that takes value when absent. value must already be
// in normalized form (int64 for [Int], float64 for [Number], []any for arrays).
func Default(name string, d Descriptor, value any) Field {
	return Field{Name: name, Desc: d, optional: true, hasDefault: true, def: value}
}

// IsOptional reports whether the field may be absent.
func (f Field) IsOptional() bool { return f.optional }

// ObjectDescriptor accepts a JSON object with the declared fields. Undeclared
// fields are ignored and dropped from the normalized value.
type ObjectDescriptor struct {
	fields []Field
}

// Object builds an object descriptor from fields, checked in declaration order.
func Object(fields ...Field) *ObjectDescriptor {
	out := make([]Field, len(fields))
	copy(out, fields)
	return &ObjectDescriptor{fields: out}
}

// Extend returns a new descriptor with extra fields appended. A field with an
// existing name replaces the earlier declaration.
func (o *ObjectDescriptor) Extend(fields ...Field) *ObjectDescriptor {
	merged := make([]Field, 0, len(o.fields)+len(fields))
	for _, existing := range o.fields {
		replaced := false
		for _, f := range fields {
			if f.Name == existing.Name {
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, existing)
		}
	}
	merged = append(merged, fields...)
	return &ObjectDescriptor{fields: merged}
}

// Fields returns a copy of the declared fields.
func (o *ObjectDescriptor) Fields() []Field {
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

func (o *ObjectDescriptor) Kind() string { return "object" }

func (o *ObjectDescriptor) check(path string, v any) (any, Violations) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(path, o.Kind(), v)
	}

	out := make(map[string]any, len(o.fields))
	var vs Violations
	for _, f := range o.fields {
		fieldPath := joinPath(path, f.Name)
		raw, present := m[f.Name]
		switch {
		case !present && f.hasDefault:
			out[f.Name] = f.def
		case !present && f.optional:
		case !present:
			vs = append(vs, Violation{Path: fieldPath, Expected: f.Desc.Kind(), Got: "missing"})
		case raw == nil && f.nullable:
			out[f.Name] = nil
		default:
			val, fieldVs := f.Desc.check(fieldPath, raw)
			if len(fieldVs) > 0 {
				vs = append(vs, fieldVs...)
				continue
			}
			out[f.Name] = val
		}
	}
	if len(vs) > 0 {
		return nil, vs
	}
	return out, nil
}

type arrayDescriptor struct {
	elem Descriptor
}

// Array accepts a JSON array whose every element matches elem.
func Array(elem Descriptor) Descriptor { return arrayDescriptor{elem: elem} }

func (d arrayDescriptor) Kind() string { return "array" }

func (d arrayDescriptor) check(path string, v any) (any, Violations) {
	items, ok := v.([]any)
	if !ok {
		return nil, mismatch(path, d.Kind(), v)
	}

	out := make([]any, len(items))
	var vs Violations
	for i, item := range items {
		val, itemVs := d.elem.check(indexPath(path, i), item)
		if len(itemVs) > 0 {
			vs = append(vs, itemVs...)
			continue
		}
		out[i] = val
	}
	if len(vs) > 0 {
		return nil, vs
	}
	return out, nil
}

type unionDescriptor struct {
	variants []Descriptor
}

// Union accepts a value matching any variant. Variants are tried in declaration
// order and the first structural match wins; its normalized value is returned.
func Union(variants ...Descriptor) Descriptor {
	out := make([]Descriptor, len(variants))
	copy(out, variants)
	return unionDescriptor{variants: out}
}

func (d unionDescriptor) Kind() string {
	kinds := make([]string, 0, len(d.variants))
	for _, v := range d.variants {
		kinds = append(kinds, v.Kind())
	}
	return strings.Join(kinds, " | ")
}

// When exactly one variant accepts the value's shape and fails only below path,
// its nested violations are reported instead of a bare mismatch at path.
func (d unionDescriptor) check(path string, v any) (any, Violations) {
	var nested Violations
	candidates := 0
	for _, variant := range d.variants {
		out, vs := variant.check(path, v)
		if len(vs) == 0 {
			return out, nil
		}
		if !vs.Has(path) {
			candidates++
			nested = vs
		}
	}
	if candidates == 1 {
		return nil, nested
	}
	return nil, mismatch(path, d.Kind(), v)
}
