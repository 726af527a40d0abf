package demoauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Paul-Starodub/fast-library/internal/config"
)

const redisKeyPrefix = "fast-library:demo-auth:token:"

// RedisStore shares demo tokens between processes.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient connects to the configured Redis and pings it.
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func redisKey(token string) string {
	return redisKeyPrefix + token
}

func (s *RedisStore) Put(ctx context.Context, token, username string, ttl time.Duration) error {
	return s.client.Set(ctx, redisKey(token), username, ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (string, error) {
	username, err := s.client.Get(ctx, redisKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownToken
	}
	if err != nil {
		return "", fmt.Errorf("redis lookup: %w", err)
	}
	return username, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisKey(token)).Err()
}
