package cache

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore shares directory entries between instances.
type RedisStore struct {
	rc     *redis.Client
	prefix string
}

func NewRedisStore(rc *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rc: rc, prefix: prefix}
}

// OpenRedisFromEnv builds a client from REDIS_HOST, REDIS_PORT, REDIS_PASS and
// REDIS_DB. An unparsable REDIS_DB falls back to 0.
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	addr := host + ":" + port
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	zap.L().Debug("redis client", zap.String("addr", addr), zap.Int("db", db))
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rc.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rc.Set(ctx, r.prefix+key, value, ttl).Err()
}
