package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KVRedis keeps each document under prefix+key with no expiry.
type KVRedis struct {
	rdb    *redis.Client
	prefix string
}

func NewKVRedis(rdb *redis.Client, prefix string) *KVRedis {
	return &KVRedis{rdb: rdb, prefix: prefix}
}

var _ KVStore = (*KVRedis)(nil)

func (r *KVRedis) key(k string) string { return r.prefix + k }

func (r *KVRedis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, true, nil
}

func (r *KVRedis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *KVRedis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
