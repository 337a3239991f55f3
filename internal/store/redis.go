package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/securelink/internal/link"
)

// linkKeyPrefix namespaces link entries in Redis.
const linkKeyPrefix = "link:"

// storedPayload is the wire shape of a link entry in Redis. Ciphertext is
// hex-encoded so the whole value stays a plain JSON string.
type storedPayload struct {
	EncryptedData string        `json:"encrypted_data"`
	Metadata      link.Metadata `json:"metadata"`
}

// RedisStore is a Redis implementation of link.Repository. Expiry is enforced
// by Redis key TTLs; no background sweeper is needed.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Save(
	ctx context.Context, code link.Code, ciphertext []byte, meta link.Metadata, ttl time.Duration,
) error {
	payload, err := json.Marshal(storedPayload{
		EncryptedData: hex.EncodeToString(ciphertext),
		Metadata:      meta,
	})
	if err != nil {
		return fmt.Errorf("encode link entry: %w", err)
	}

	// SET NX EX makes the collision check and the insert a single atomic
	// operation, so two racing writers can never both claim the same code.
	ok, err := r.client.SetNX(ctx, linkKey(code), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("save link entry: %w", err)
	}

	if !ok {
		return link.ErrConflict
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, code link.Code) (*link.StoredLink, error) {
	raw, err := r.client.Get(ctx, linkKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, link.ErrNotFound
		}

		return nil, fmt.Errorf("get link entry: %w", err)
	}

	var payload storedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// An unreadable entry is indistinguishable from a missing one to
		// callers; never hand back partial data.
		return nil, link.ErrNotFound
	}

	ciphertext, err := hex.DecodeString(payload.EncryptedData)
	if err != nil {
		return nil, link.ErrNotFound
	}

	return &link.StoredLink{
		Code:       code,
		Ciphertext: ciphertext,
		Metadata:   payload.Metadata,
	}, nil
}

func (r *RedisStore) Exists(ctx context.Context, code link.Code) (bool, error) {
	count, err := r.client.Exists(ctx, linkKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("check link entry: %w", err)
	}

	return count > 0, nil
}

func (r *RedisStore) Delete(ctx context.Context, code link.Code) (bool, error) {
	removed, err := r.client.Del(ctx, linkKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("delete link entry: %w", err)
	}

	return removed > 0, nil
}

func linkKey(code link.Code) string {
	return linkKeyPrefix + string(code)
}

// Compile-time check.
var _ link.Repository = (*RedisStore)(nil)
