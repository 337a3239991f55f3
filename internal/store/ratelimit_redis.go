package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/securelink/internal/ratelimit"
)

// rateLimitKeyPrefix namespaces rate limit counters in Redis, away from the
// link entries.
const rateLimitKeyPrefix = "ratelimit:"

// RateLimitRedisStore is a Redis implementation of ratelimit.Store using a
// sorted set per key: members are request timestamps, scored by time, so a
// range prune plus a cardinality read gives the sliding window count.
type RateLimitRedisStore struct {
	client *redis.Client
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{client: client}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-window)
	redisKey := rateLimitKeyPrefix + key

	member := fmt.Sprintf("%d", now.UnixNano())

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, redisKey)
	// The counter key cleans itself up once the client goes quiet.
	pipe.Expire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record rate limit request: %w", err)
	}

	return count.Val(), nil
}

// Compile-time check.
var _ ratelimit.Store = (*RateLimitRedisStore)(nil)
