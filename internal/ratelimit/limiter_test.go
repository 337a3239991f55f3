package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/securelink/internal/ratelimit"
	"github.com/serroba/securelink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindowLimiter(store.NewRateLimitMemoryStore(), 5, time.Minute)

		for range 5 {
			allowed, err := limiter.Allow(context.Background(), "client1")

			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("denies requests over limit", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindowLimiter(store.NewRateLimitMemoryStore(), 3, time.Minute)

		for range 3 {
			allowed, err := limiter.Allow(context.Background(), "client1")

			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := limiter.Allow(context.Background(), "client1")

		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindowLimiter(store.NewRateLimitMemoryStore(), 2, time.Minute)

		for range 2 {
			allowed, _ := limiter.Allow(context.Background(), "client1")
			assert.True(t, allowed)
		}

		allowed, _ := limiter.Allow(context.Background(), "client1")
		assert.False(t, allowed, "client1 should be rate limited")

		allowed, err := limiter.Allow(context.Background(), "client2")

		require.NoError(t, err)
		assert.True(t, allowed, "client2 should still be allowed")
	})
}

func TestPolicyLimiter(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().
		AddLimit(ratelimit.ScopeGlobal, 10, time.Minute).
		AddLimit(ratelimit.ScopeWrite, 2, time.Minute).
		Build()

	writeScopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

	t.Run("enforces the tightest applicable limit", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)

		for range 2 {
			allowed, exceeded, err := limiter.Allow(context.Background(), "client1", writeScopes)

			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Nil(t, exceeded)
		}

		allowed, exceeded, err := limiter.Allow(context.Background(), "client1", writeScopes)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		assert.Equal(t, int64(3), exceeded.Count)
	})

	t.Run("ignores scopes the policy does not configure", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)

		allowed, exceeded, err := limiter.Allow(context.Background(), "client1",
			[]ratelimit.Scope{ratelimit.ScopeRead})

		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Nil(t, exceeded)
	})

	t.Run("windows count independently per scope", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy)

		// Exhaust the write limit; the global limit still has headroom for
		// read-scoped traffic.
		for range 3 {
			_, _, err := limiter.Allow(context.Background(), "client1", writeScopes)
			require.NoError(t, err)
		}

		allowed, _, err := limiter.Allow(context.Background(), "client1",
			[]ratelimit.Scope{ratelimit.ScopeGlobal})

		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestDefaultPolicy(t *testing.T) {
	policy := ratelimit.DefaultPolicy()

	assert.NotEmpty(t, policy.Limits[ratelimit.ScopeGlobal])
	assert.NotEmpty(t, policy.Limits[ratelimit.ScopeRead])
	assert.NotEmpty(t, policy.Limits[ratelimit.ScopeWrite])
}
