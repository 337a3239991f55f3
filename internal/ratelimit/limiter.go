package ratelimit

import (
	"context"
	"time"
)

// Limiter defines the interface for rate limiting.
type Limiter interface {
	// Allow reports whether a request from the given key should proceed.
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// SlidingWindowLimiter enforces a single limit over a sliding window.
type SlidingWindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(store Store, limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, key, l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}
