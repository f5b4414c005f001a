package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "auction"

// RedisStore 以 Redis 作为持久层，URI 视为不可变，写入时不设 TTL
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: keyPrefix}
}

// getKey 例如 auction:metadata:uri:<metadata 地址>
func (s *RedisStore) getKey(key string) string {
	return fmt.Sprintf("%s:metadata:uri:%s", s.prefix, key)
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.getKey(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("redis get error: %w", err)
	default:
		return val, true, nil
	}
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.getKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}
