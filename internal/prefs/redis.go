package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// toggleScript flips the flag atomically. A missing key counts as "true".
var toggleScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
local next = "false"
if cur == "false" then next = "true" end
redis.call("SET", KEYS[1], next)
return next
`)

// RedisStore keeps preferences in Redis so several processes share them.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr and checks the connection.
func NewRedisStore(addr, password string, db int, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(client, prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, key: prefix + soundKey}
}

// Key returns the Redis key holding the flag.
func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) SoundEnabled(ctx context.Context) (bool, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return true, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return parseFlag(v), nil
}

func (s *RedisStore) SetSoundEnabled(ctx context.Context, enabled bool) error {
	if err := s.client.Set(ctx, s.key, strconv.FormatBool(enabled), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) ToggleSound(ctx context.Context) (bool, error) {
	v, err := toggleScript.Run(ctx, s.client, []string{s.key}).Text()
	if err != nil {
		return false, fmt.Errorf("redis toggle %s: %w", s.key, err)
	}
	return parseFlag(v), nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}
