package redis

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore"
	"github.com/redis/go-redis/v9"
)

// RedisStore 以 prefix:key 存放字串 value, ttl 為 0 表示不過期
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type Option func(*RedisStore)

// WithTTL sets an expiry on every written key.
func WithTTL(ttl time.Duration) Option {
	return func(r *RedisStore) {
		r.ttl = ttl
	}
}

func NewRedisStore(redisClient *redis.Client, prefix string, opts ...Option) *RedisStore {
	r := &RedisStore{
		client: redisClient,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ kvstore.Store = (*RedisStore)(nil)

func (r *RedisStore) prefixKey(key string) string {
	if r.prefix == "" {
		return key
	}
	var builder strings.Builder
	builder.Grow(len(r.prefix) + 1 + len(key))
	builder.WriteString(r.prefix)
	builder.WriteString(":")
	builder.WriteString(key)
	return builder.String()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return wrapErr("", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefixKey(key)).Result()
	if err == redis.Nil {
		return "", kvstore.ErrKeyNotFound
	}
	if err != nil {
		return "", wrapErr(key, err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, r.prefixKey(key), value, r.ttl).Err(); err != nil {
		return wrapErr(key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefixKey(key)).Err(); err != nil {
		return wrapErr(key, err)
	}
	return nil
}

// Keys 回傳去掉 prefix 的 key, 只給管理/測試用 (SCAN 不會 block redis)
func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var cursor uint64
	var all []string
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefixKey("*"), 100).Result()
		if err != nil {
			return nil, wrapErr("", err)
		}
		for _, k := range keys {
			all = append(all, strings.TrimPrefix(k, r.prefix+":"))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return all, nil
}

// Close 不關閉 client, client 由 redis_client 統一管理
func (r *RedisStore) Close() error {
	return nil
}

func wrapErr(key string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return kvstore.NewStoreError(kvstore.StoreErrorTimeout, key, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return kvstore.NewStoreError(kvstore.StoreErrorTimeout, key, err)
	case errors.As(err, &netErr):
		return kvstore.NewStoreError(kvstore.StoreErrorConnection, key, err)
	default:
		return kvstore.NewStoreError(kvstore.StoreErrorUnknown, key, err)
	}
}
