package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/facebookgo/clock"
)

var (
	// ErrInvalidSession is returned by [Store.Replace] for a session without a token.
	ErrInvalidSession = errors.New("session invalid")
	// ErrSessionExpired is returned by [Store.Replace] for a session whose expiresAt has passed.
	ErrSessionExpired = errors.New("session expired")
)

// Store holds the current session in memory and mirrors it to [Storage].
//
// Store is safe for concurrent use.
type Store struct {
	storage Storage
	key     string
	clock   clock.Clock

	mu      sync.RWMutex
	current *Session
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithKey overrides the storage key ([EntryKey] by default).
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock sets the clock used for expiry checks.
func WithClock(c clock.Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore returns an empty store backed by storage.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		key:     EntryKey,
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the store's clock.
func (s *Store) Clock() clock.Clock { return s.clock }

// Load reads the durable entry and adopts it as the current session.
//
// An absent, corrupt or expired entry yields (nil, nil); corrupt and expired
// entries are deleted. A storage read failure is returned and leaves the
// in-memory session unchanged.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		s.current = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess, err := Decode(raw)
	if err == nil && sess.Expired(s.clock.Now()) {
		err = ErrSessionExpired
	}
	if err != nil {
		s.current = nil
		if delErr := s.storage.Delete(ctx, s.key); delErr != nil {
			return nil, fmt.Errorf("purge session entry: %w", delErr)
		}
		return nil, nil
	}

	s.current = sess
	return sess, nil
}

// Replace sets the current session and synchronizes the durable entry: a
// write for a session, a delete for nil.
//
// When the write fails the previous session stays current. Replace(nil)
// always clears the in-memory session and returns any delete failure.
func (s *Store) Replace(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		s.current = nil
		if err := s.storage.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("delete session entry: %w", err)
		}
		return nil
	}

	if sess.Token == "" {
		return ErrInvalidSession
	}
	now := s.clock.Now()
	if sess.Expired(now) {
		return ErrSessionExpired
	}
	raw, err := Encode(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, raw, sess.Remaining(now)); err != nil {
		return fmt.Errorf("write session entry: %w", err)
	}
	s.current = sess
	return nil
}

// Current returns the in-memory session, or nil when there is none or it
// has expired. It never reads storage.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Expired(s.clock.Now()) {
		return nil
	}
	return s.current
}
