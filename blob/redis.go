package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/conveyal/r5-sub005/types"
	"github.com/redis/go-redis/v9"
)

// Redis stores blobs as Redis string values, optionally under a key prefix so
// one Redis instance can serve several deployments.
type Redis struct {
	client *redis.Client
	prefix string
}

// Compile-time assertion that Redis implements BlobStore.
var _ types.BlobStore = (*Redis)(nil)

// NewRedis creates a Redis-backed blob store. prefix may be empty.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Put stores data under key with no expiration; finished artifacts are
// retained until explicitly cleaned up.
func (s *Redis) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}

	return nil
}

// Get retrieves the value stored under key.
func (s *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", types.ErrBlobNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}

	return data, nil
}
