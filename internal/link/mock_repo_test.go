package link_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/serroba/securelink/internal/link"
)

var errMock = errors.New("mock error")

// mockRepo is a test double for link.Repository that records calls and can be
// configured to fail or report collisions.
type mockRepo struct {
	mu sync.Mutex

	entries map[link.Code]*link.StoredLink

	saveErr   error
	getErr    error
	deleteErr error

	// conflictsLeft makes the next N Save calls fail with ErrConflict.
	conflictsLeft int

	saveCalls   int
	savedTTL    time.Duration
	savedCodes  []link.Code
	existsCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: make(map[link.Code]*link.StoredLink)}
}

func (m *mockRepo) Save(
	_ context.Context, code link.Code, ciphertext []byte, meta link.Metadata, ttl time.Duration,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls++
	m.savedCodes = append(m.savedCodes, code)

	if m.saveErr != nil {
		return m.saveErr
	}

	if m.conflictsLeft > 0 {
		m.conflictsLeft--

		return link.ErrConflict
	}

	if _, ok := m.entries[code]; ok {
		return link.ErrConflict
	}

	m.savedTTL = ttl
	m.entries[code] = &link.StoredLink{Code: code, Ciphertext: ciphertext, Metadata: meta}

	return nil
}

func (m *mockRepo) Get(_ context.Context, code link.Code) (*link.StoredLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	entry, ok := m.entries[code]
	if !ok {
		return nil, link.ErrNotFound
	}

	return entry, nil
}

func (m *mockRepo) Exists(_ context.Context, code link.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.existsCalls++
	_, ok := m.entries[code]

	return ok, nil
}

func (m *mockRepo) Delete(_ context.Context, code link.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return false, m.deleteErr
	}

	_, ok := m.entries[code]
	delete(m.entries, code)

	return ok, nil
}
