package redis_client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	_instances = sync.Map{}
)

// GetRedisClient 同一個 address+db 共用同一個 client, 建立時會先 ping 一次
func GetRedisClient(ctx context.Context, address string, options ...Option) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:        address,
		DialTimeout: 5 * time.Second,
	}
	for _, option := range options {
		option(opts)
	}

	key := instanceKey(opts)
	if client, ok := _instances.Load(key); ok {
		return client.(*redis.Client), nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", address, err)
	}

	actual, loaded := _instances.LoadOrStore(key, client)
	if loaded {
		_ = client.Close()
	}
	return actual.(*redis.Client), nil
}

// ReleaseRedisClient closes every cached client for address.
func ReleaseRedisClient(address string) error {
	var firstErr error
	_instances.Range(func(k, v any) bool {
		if k.(string) == address || hasAddrPrefix(k.(string), address) {
			_instances.Delete(k)
			if err := v.(*redis.Client).Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return true
	})
	return firstErr
}

func instanceKey(opts *redis.Options) string {
	return fmt.Sprintf("%s/%d", opts.Addr, opts.DB)
}

func hasAddrPrefix(key, address string) bool {
	return len(key) > len(address) && key[:len(address)] == address && key[len(address)] == '/'
}

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithPoolSize(poolSize int) Option {
	return func(o *redis.Options) {
		o.PoolSize = poolSize
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		o.DialTimeout = d
		o.ReadTimeout = d
		o.WriteTimeout = d
	}
}
