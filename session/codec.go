package session

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/MrEthical07/goSession/schema"
)

// ErrCorruptEntry is returned by [Decode] for an entry that is not valid JSON
// or does not match the session entry descriptor.
var ErrCorruptEntry = errors.New("session entry corrupt")

// Encode serializes s in the durable entry format
// {"token","user","expiresAt"}.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("session: encode nil session")
	}
	return json.Marshal(s)
}

// Decode parses and validates a durable entry.
func Decode(data []byte) (*Session, error) {
	s, err := schema.DecodeBytes[Session](schema.SessionEntrySchema, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return &s, nil
}
