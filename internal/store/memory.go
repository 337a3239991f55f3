package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/securelink/internal/link"
)

type memoryEntry struct {
	stored    *link.StoredLink
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryStore is an in-memory, TTL-aware implementation of link.Repository,
// used in tests. Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[link.Code]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[link.Code]*memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(
	_ context.Context, code link.Code, ciphertext []byte, meta link.Metadata, ttl time.Duration,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if entry, ok := m.entries[code]; ok && !entry.expired(now) {
		return link.ErrConflict
	}

	m.entries[code] = &memoryEntry{
		stored: &link.StoredLink{
			Code:       code,
			Ciphertext: append([]byte{}, ciphertext...),
			Metadata:   meta,
		},
		expiresAt: now.Add(ttl),
	}

	return nil
}

func (m *MemoryStore) Get(_ context.Context, code link.Code) (*link.StoredLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[code]
	if !ok {
		return nil, link.ErrNotFound
	}

	if entry.expired(m.now()) {
		delete(m.entries, code)

		return nil, link.ErrNotFound
	}

	// Copy so callers cannot mutate the stored ciphertext.
	return &link.StoredLink{
		Code:       entry.stored.Code,
		Ciphertext: append([]byte{}, entry.stored.Ciphertext...),
		Metadata:   entry.stored.Metadata,
	}, nil
}

func (m *MemoryStore) Exists(_ context.Context, code link.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[code]
	if !ok {
		return false, nil
	}

	if entry.expired(m.now()) {
		delete(m.entries, code)

		return false, nil
	}

	return true, nil
}

func (m *MemoryStore) Delete(_ context.Context, code link.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[code]
	if !ok {
		return false, nil
	}

	delete(m.entries, code)

	return !entry.expired(m.now()), nil
}

// SetClock overrides the store's time source for expiry tests.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.now = now
}

// Compile-time check.
var _ link.Repository = (*MemoryStore)(nil)
