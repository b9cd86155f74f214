package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "session:"

// RedisStore keeps sessions in Redis and relies on key expiry for cleanup.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &RedisStore{client: rdb}, nil
}

func redisKey(sessionID, key string) string {
	return redisPrefix + sessionID + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *RedisStore) Set(ctx context.Context, sessionID, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, redisKey(sessionID, key), value, ttl).Err()
}

func (r *RedisStore) Take(ctx context.Context, sessionID, key string) ([]byte, error) {
	b, err := r.client.GetDel(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	return r.client.Del(ctx, redisKey(sessionID, key)).Err()
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
