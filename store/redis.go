package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// RedisKV persists namespaced values in a Redis hash per namespace, giving
// agent memories durability across sessions and process restarts.
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV creates a Redis-backed store and verifies connectivity.
func NewRedisKV(cfg RedisConfig) (*RedisKV, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisKV{rdb: rdb}, nil
}

func namespaceKey(namespace string) string {
	return fmt.Sprintf("deepresearch:memory:%s", namespace)
}

// Get returns the value stored under namespace/key or ErrNotFound.
func (s *RedisKV) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	value, err := s.rdb.HGet(ctx, namespaceKey(namespace), key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hget failed: %w", err)
	}
	return value, nil
}

// Set stores the value under namespace/key.
func (s *RedisKV) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := s.rdb.HSet(ctx, namespaceKey(namespace), key, value).Err(); err != nil {
		return fmt.Errorf("hset failed: %w", err)
	}
	return nil
}

// List returns the sorted keys in the namespace matching prefix.
func (s *RedisKV) List(ctx context.Context, namespace, prefix string) ([]string, error) {
	keys, err := s.rdb.HKeys(ctx, namespaceKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("hkeys failed: %w", err)
	}
	matched := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// Delete removes namespace/key or returns ErrNotFound.
func (s *RedisKV) Delete(ctx context.Context, namespace, key string) error {
	removed, err := s.rdb.HDel(ctx, namespaceKey(namespace), key).Result()
	if err != nil {
		return fmt.Errorf("hdel failed: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisKV) Close() error {
	return s.rdb.Close()
}
