package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by [Storage.Get] when no entry exists under the key.
var ErrNotFound = errors.New("session storage: entry not found")

// Storage is a device-local key/value mirror for the durable session entry.
//
// Get returns [ErrNotFound] for an absent key. Delete of an absent key is not
// an error. ttl is a hint: backends with native expiry (redis) may evict the
// entry after ttl, others keep it until deleted. Expiry is always re-checked
// on load, so honoring ttl is optional.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps entries in process memory. It is safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStorage returns an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

// Get implements [Storage].
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements [Storage]. ttl is ignored.
func (m *MemoryStorage) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements [Storage].
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
