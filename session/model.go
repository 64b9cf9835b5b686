package session

import (
	"math"
	"time"

	"github.com/MrEthical07/goSession/schema"
)

// EntryKey is the storage key of the durable session entry.
const EntryKey = "session"

// Session is an authenticated principal with a bounded lifetime.
//
// Sessions are replaced as a whole and never patched; treat a *Session
// returned by this package as read-only.
type Session struct {
	Token     string      `json:"token"`
	User      schema.User `json:"user"`
	ExpiresAt int64       `json:"expiresAt"`
}

// ExpiresAtTime returns ExpiresAt as a time.Time.
func (s *Session) ExpiresAtTime() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// Expired reports whether the session has expired at or before now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.UnixMilli()
}

// Remaining returns the time left until expiry, which may be negative.
// Distances beyond the range of time.Duration saturate.
func (s *Session) Remaining(now time.Time) time.Duration {
	const maxMillis = math.MaxInt64 / int64(time.Millisecond)
	nowMs := now.UnixMilli()
	diff := s.ExpiresAt - nowMs
	if (s.ExpiresAt^nowMs)&(s.ExpiresAt^diff) < 0 {
		if s.ExpiresAt >= 0 {
			return time.Duration(math.MaxInt64)
		}
		return time.Duration(math.MinInt64)
	}
	switch {
	case diff > maxMillis:
		return time.Duration(math.MaxInt64)
	case diff < -maxMillis:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(diff) * time.Millisecond
}
