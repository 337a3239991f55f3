package link

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a code does not resolve to a stored link.
var ErrNotFound = errors.New("link not found")

// ErrConflict is returned by Save when the code is already taken.
var ErrConflict = errors.New("short code already exists")

// Repository defines the storage contract for link entries. Entries are
// written once, never updated, and evicted automatically by the store's TTL.
type Repository interface {
	// Save persists a new entry with the given TTL. It is an atomic
	// insert-if-absent: ErrConflict is returned when the code is taken,
	// which the service uses for collision detection.
	Save(ctx context.Context, code Code, ciphertext []byte, meta Metadata, ttl time.Duration) error

	// Get retrieves an entry. ErrNotFound covers missing, expired, and
	// unreadable entries alike.
	Get(ctx context.Context, code Code) (*StoredLink, error)

	// Exists probes for an entry without retrieving it.
	Exists(ctx context.Context, code Code) (bool, error)

	// Delete removes an entry early, reporting whether one was removed.
	Delete(ctx context.Context, code Code) (bool, error)
}
