package schema

import (
	"errors"
	"testing"
)

const supplierEnvelopeBody = `{"success":true,"message":"ok","data":{"id":1,"supplier_code":"SUP-1","supplier_name":"Acme","is_active":true,"created_at":{"seconds":0},"updated_at":{"seconds":0}}}`

func mustParse(t *testing.T, body string) any {
	t.Helper()
	v, err := ParseJSON([]byte(body))
	if err != nil {
		t.Fatalf("parse %q: %v", body, err)
	}
	return v
}

func TestSupplierEnvelopeAccepted(t *testing.T) {
	v := mustParse(t, supplierEnvelopeBody)

	type envelope struct {
		Success bool     `json:"success"`
		Message string   `json:"message"`
		Data    Supplier `json:"data"`
	}
	env, err := Decode[envelope](Envelope(SupplierSchema), v)
	if err != nil {
		t.Fatalf("decode supplier envelope: %v", err)
	}
	if env.Data.ID != 1 {
		t.Fatalf("expected supplier id 1, got %d", env.Data.ID)
	}
	if env.Data.SupplierCode != "SUP-1" || env.Data.SupplierName != "Acme" {
		t.Fatalf("unexpected supplier %+v", env.Data)
	}
	if env.Data.CreatedAt.Nanos != 0 {
		t.Fatalf("expected nanos default 0, got %d", env.Data.CreatedAt.Nanos)
	}
}

func TestSupplierEnvelopeRejectsStringBoolean(t *testing.T) {
	body := `{"success":true,"message":"ok","data":{"id":1,"supplier_code":"SUP-1","supplier_name":"Acme","is_active":"yes","created_at":{"seconds":0},"updated_at":{"seconds":0}}}`
	v := mustParse(t, body)

	out, vs := Validate(Envelope(SupplierSchema), v)
	if out != nil {
		t.Fatalf("expected no normalized value on mismatch, got %v", out)
	}
	if !vs.Has("data.is_active") {
		t.Fatalf("expected violation at data.is_active, got %v", vs.Paths())
	}
	if vs[0].Expected != "boolean" || vs[0].Got != "string" {
		t.Fatalf("unexpected violation %+v", vs[0])
	}
}

func TestDefaultsAppliedOnTimestamp(t *testing.T) {
	v := mustParse(t, `{"seconds":42}`)
	out, vs := Validate(TimestampSchema, v)
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", out)
	}
	if m["nanos"] != int64(0) {
		t.Fatalf("expected nanos default int64(0), got %#v", m["nanos"])
	}
	if m["seconds"] != int64(42) {
		t.Fatalf("expected seconds 42, got %#v", m["seconds"])
	}
}

func TestTimestampNanosOutOfRange(t *testing.T) {
	for _, raw := range []string{`{"seconds":0,"nanos":4294967296}`, `{"seconds":0,"nanos":-5}`, `{"seconds":0,"nanos":1000000000}`} {
		_, vs := Validate(TimestampObject, mustParse(t, raw))
		if !vs.Has("nanos") {
			t.Fatalf("%s: expected violation at nanos, got %v", raw, vs)
		}
	}
	out, vs := Validate(TimestampObject, mustParse(t, `{"seconds":1,"nanos":999999999}`))
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if out.(map[string]any)["nanos"] != int64(MaxNanos) {
		t.Fatalf("expected nanos %d, got %#v", MaxNanos, out)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	v := mustParse(t, `{"id":3,"role_name":"admin","colour":"blue"}`)
	out, vs := Validate(RoleSchema, v)
	if len(vs) != 0 {
		t.Fatalf("unexpected violations: %v", vs)
	}
	if _, ok := out.(map[string]any)["colour"]; ok {
		t.Fatal("expected unknown field to be dropped from normalized value")
	}
}

func TestUnionFirstMatchWins(t *testing.T) {
	asString := mustParse(t, `{"id":1,"username":"a","email":"a@x","role":"admin","is_active":true,"created_at":"2024-01-02T03:04:05Z"}`)
	user, err := Decode[User](UserSchema, asString)
	if err != nil {
		t.Fatalf("decode user with string role: %v", err)
	}
	if user.Role.Name != "admin" || user.Role.Role != nil {
		t.Fatalf("unexpected role %+v", user.Role)
	}
	if user.CreatedAt.Seconds != 1704164645 {
		t.Fatalf("expected RFC3339 timestamp decoded, got %d", user.CreatedAt.Seconds)
	}

	asObject := mustParse(t, `{"id":1,"username":"a","email":"a@x","role":{"id":9,"role_name":"ops"},"is_active":true,"created_at":{"seconds":5,"nanos":7}}`)
	user, err = Decode[User](UserSchema, asObject)
	if err != nil {
		t.Fatalf("decode user with object role: %v", err)
	}
	if user.Role.Role == nil || user.Role.Role.ID != 9 || user.Role.Name != "ops" {
		t.Fatalf("unexpected role %+v", user.Role)
	}
	if len(user.Role.Role.Permissions) != 0 {
		t.Fatalf("expected permissions default to an empty list, got %v", user.Role.Role.Permissions)
	}
}

func TestUnionMismatchReportsAlternatives(t *testing.T) {
	v := mustParse(t, `{"id":1,"username":"a","email":"a@x","role":7,"is_active":true,"created_at":{"seconds":1}}`)
	_, vs := Validate(UserSchema, v)
	if !vs.Has("role") {
		t.Fatalf("expected violation at role, got %v", vs.Paths())
	}
	if vs[0].Expected != "string | object" {
		t.Fatalf("expected union kind, got %q", vs[0].Expected)
	}
}

func TestMissingAndNestedPaths(t *testing.T) {
	v := mustParse(t, `{"success":true,"message":"ok","data":[{"id":1},{"id":"2","role_name":"x"}]}`)
	_, vs := Validate(ListEnvelope(RoleSchema), v)
	for _, want := range []string{"data[0].role_name", "data[1].id"} {
		if !vs.Has(want) {
			t.Fatalf("expected violation at %s, got %v", want, vs.Paths())
		}
	}
	for _, viol := range vs {
		if viol.Path == "data[0].role_name" && viol.Got != "missing" {
			t.Fatalf("expected missing marker, got %+v", viol)
		}
	}
}

func TestIntRejectsFraction(t *testing.T) {
	_, vs := Validate(Int(), mustParse(t, `1.5`))
	if len(vs) != 1 || vs[0].Got != "fractional number" {
		t.Fatalf("expected fractional violation, got %v", vs)
	}
	out, vs := Validate(Int(), mustParse(t, `2.0`))
	if len(vs) != 0 || out != int64(2) {
		t.Fatalf("expected 2.0 accepted as int64(2), got %v %v", out, vs)
	}
}

func TestNullableAndOptional(t *testing.T) {
	d := Object(Nullable("note", String()), Optional("tag", String()))

	if _, vs := Validate(d, mustParse(t, `{"note":null}`)); len(vs) != 0 {
		t.Fatalf("nullable field should accept null: %v", vs)
	}
	if _, vs := Validate(d, mustParse(t, `{"tag":null}`)); !vs.Has("tag") {
		t.Fatalf("optional field should reject null, got %v", vs)
	}
}

func TestListEnvelopeMeta(t *testing.T) {
	v := mustParse(t, `{"success":true,"message":"","data":[],"meta":{"total_count":12,"page":1}}`)
	type list struct {
		Data []Role `json:"data"`
		Meta *struct {
			TotalCount int64 `json:"total_count"`
		} `json:"meta"`
	}
	out, err := Decode[list](ListEnvelope(RoleSchema), v)
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if out.Meta == nil || out.Meta.TotalCount != 12 {
		t.Fatalf("expected total_count 12, got %+v", out.Meta)
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"a":1} {"b":2}`)); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	if _, err := ParseJSON([]byte(`<html>`)); err == nil {
		t.Fatal("expected parse error for non-JSON body")
	}
}

func TestCheckValidatesRequestPayload(t *testing.T) {
	if _, err := Check(SupplierInputSchema, SupplierInput{SupplierCode: "S", SupplierName: "N"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	_, err := Check(SupplierInputSchema, SupplierInput{SupplierCode: " "})
	var vs Violations
	if !errors.As(err, &vs) {
		t.Fatalf("expected Violations, got %v", err)
	}
	if !vs.Has("supplier_code") || !vs.Has("supplier_name") {
		t.Fatalf("expected code and name violations, got %v", vs.Paths())
	}
}

func TestRegistryLookup(t *testing.T) {
	for _, name := range Names() {
		if _, ok := Lookup(name); !ok {
			t.Fatalf("registered name %q not found", name)
		}
	}
	env, ok := ListEnvelopeOf(NameSupplier)
	if !ok {
		t.Fatal("expected supplier list envelope")
	}
	if _, vs := Validate(env, mustParse(t, `{"success":true,"message":"","data":[]}`)); len(vs) != 0 {
		t.Fatalf("empty list should validate: %v", vs)
	}
	if _, ok := EnvelopeOf("missing"); ok {
		t.Fatal("expected unknown entity lookup to fail")
	}
}
