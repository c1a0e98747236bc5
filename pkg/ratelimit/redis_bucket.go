package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// 多個 instance 共用同一個 bucket
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1])
local lastRefill = tonumber(bucket[2])

if tokens == nil then
	tokens = capacity
	lastRefill = now
end

local elapsed = (now - lastRefill) / 1000
if elapsed > 0 then
	tokens = math.min(capacity, tokens + elapsed * rate)
	lastRefill = now
end

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'last_refill', lastRefill)
redis.call('EXPIRE', key, 60)
return allowed
`)

type RedisTokenBucket struct {
	cfg    Config
	client redis.Scripter
	prefix string
	logger *zerolog.Logger
	now    func() time.Time
}

// NewRedisTokenBucket redis 出錯時放行, 只記 log
func NewRedisTokenBucket(client redis.Scripter, prefix string, cfg Config, logger *zerolog.Logger) *RedisTokenBucket {
	if cfg.Capacity <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RedisTokenBucket{
		cfg:    cfg,
		client: client,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (r *RedisTokenBucket) key(key string) string {
	if r.prefix == "" {
		return "ratelimit:" + key
	}
	return r.prefix + ":ratelimit:" + key
}

func (r *RedisTokenBucket) Allow(ctx context.Context, key string) bool {
	res, err := tokenBucketScript.Run(ctx, r.client,
		[]string{r.key(key)},
		r.cfg.Capacity,
		r.cfg.RatePS,
		r.now().UnixMilli(),
	).Int64()
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("rate limit script failed")
		return true
	}
	return res == 1
}
