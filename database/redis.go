package database

import (
	"context"
	"errors"
	"strings"

	"github.com/coldenflo/ICeducation/utils/cache"
)

// RedisStore keeps each key as a plain redis string with no expiry
type RedisStore struct {
	cache *cache.RedisCache
}

func NewRedisStore(c *cache.RedisCache) *RedisStore {
	return &RedisStore{cache: c}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.cache.Set(ctx, key, value, 0)
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}

func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return r.cache.ScanKeys(ctx, escapeGlob(prefix)+"*")
}

func (r *RedisStore) HealthCheck(ctx context.Context) error {
	return r.cache.Ping(ctx)
}

func (r *RedisStore) Close() error {
	return r.cache.Close()
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
