package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces ledger keys inside a shared Redis database.
const DefaultRedisPrefix = "aid-escrow:"

// RedisStore keeps ledger records in Redis.
type RedisStore struct {
	// client is the Redis connection used for every call.
	client redis.UniversalClient
	// prefix is prepended to every key.
	prefix string
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// DialRedisStore connects to the Redis server at address and checks it responds.
func DialRedisStore(ctx context.Context, address, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: address})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis %s: %w", address, err)
	}

	return NewRedisStore(client, prefix), nil
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return value, nil
}

// Set stores value under key without expiration.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Has reports whether key is present.
func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}

	return n > 0, nil
}

// SetBatch applies all writes inside one MULTI/EXEC transaction.
func (s *RedisStore) SetBatch(ctx context.Context, writes []Write) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			pipe.Set(ctx, s.prefix+w.Key, w.Value, 0)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("redis batch set: %w", err)
	}

	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
