package session

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeUsesDurableEntryFormat(t *testing.T) {
	raw, err := Encode(&Session{Token: "t", User: testUser(), ExpiresAt: 1234})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, want := range []string{`"token":"t"`, `"expiresAt":1234`, `"user":{`, `"role":"admin"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("encoded entry %s missing %s", raw, want)
		}
	}
	if _, err := Encode(nil); err == nil {
		t.Fatal("expected error encoding nil session")
	}
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	_, err := Decode([]byte(`{"token":"t","user":{"id":"x"},"expiresAt":1}`))
	if !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("expected ErrCorruptEntry, got %v", err)
	}
}

// FuzzSessionDecode exercises the entry decoder with arbitrary inputs.
// Goal: no panics, and every accepted entry re-encodes and decodes to the same token.
func FuzzSessionDecode(f *testing.F) {
	encoded, err := Encode(&Session{Token: "tok", User: testUser(), ExpiresAt: 1700003600000})
	if err == nil {
		f.Add(encoded)
		f.Add(encoded[:len(encoded)/2])
	}
	f.Add([]byte{})
	f.Add([]byte("null"))
	f.Add([]byte(`{"token":1}`))
	f.Add([]byte(`{"token":"t","user":{"id":1,"username":"u","email":"e","role":{"id":1,"role_name":"r"},"is_active":true,"created_at":"2024-01-01T00:00:00Z"},"expiresAt":5}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Decode(data)
		if err != nil {
			if !errors.Is(err, ErrCorruptEntry) {
				t.Fatalf("decode error must wrap ErrCorruptEntry: %v", err)
			}
			return
		}
		if s.Token == "" {
			t.Fatal("decoded session with empty token")
		}
		raw, err := Encode(s)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		again, err := Decode(raw)
		if err != nil {
			t.Fatalf("re-decode of %s: %v", raw, err)
		}
		if again.Token != s.Token || again.ExpiresAt != s.ExpiresAt {
			t.Fatalf("round trip mismatch: %+v vs %+v", again, s)
		}
	})
}
