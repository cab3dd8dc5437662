package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront:session:"

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisBackend keeps session keys in redis, one string per key.
type RedisBackend struct {
	client redisKV
	ttl    time.Duration
}

// NewRedisBackend constructs a backend. A zero ttl keeps keys until deleted.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return newRedisBackend(client, ttl)
}

func newRedisBackend(client redisKV, ttl time.Duration) *RedisBackend {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisBackend{client: client, ttl: ttl}
}

// Scope returns the storage for namespace.
func (backend *RedisBackend) Scope(namespace string) Storage {
	return &redisStorage{backend: backend, namespace: namespace}
}

type redisStorage struct {
	backend   *RedisBackend
	namespace string
}

func (storage *redisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := storage.backend.client.Get(ctx, storage.redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session_store.get.redis: %w", err)
	}
	return value, true, nil
}

func (storage *redisStorage) Set(ctx context.Context, key string, value string) error {
	if err := storage.backend.client.Set(ctx, storage.redisKey(key), value, storage.backend.ttl).Err(); err != nil {
		return fmt.Errorf("session_store.set.redis: %w", err)
	}
	return nil
}

func (storage *redisStorage) Delete(ctx context.Context, key string) error {
	if err := storage.backend.client.Del(ctx, storage.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("session_store.delete.redis: %w", err)
	}
	return nil
}

func (storage *redisStorage) redisKey(key string) string {
	return redisKeyPrefix + storage.namespace + ":" + key
}
