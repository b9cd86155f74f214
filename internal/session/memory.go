package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero: never
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore keeps sessions in process memory. Expired entries are hidden
// on read and reclaimed by Purge.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func memoryKey(sessionID, key string) string {
	return sessionID + "\x00" + key
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[memoryKey(sessionID, key)]
	if !ok || e.expired(m.now()) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[memoryKey(sessionID, key)] = e
	return nil
}

func (m *MemoryStore) Take(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey(sessionID, key)
	e, ok := m.entries[k]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.entries, k)
	if e.expired(m.now()) {
		return nil, ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, memoryKey(sessionID, key))
	return nil
}

// Purge drops every expired entry and returns how many were removed.
func (m *MemoryStore) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
