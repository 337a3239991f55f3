package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit counters.
type Store interface {
	// Record registers a request under key and returns how many requests the
	// key has made inside the current window, pruning expired entries.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
