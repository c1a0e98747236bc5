package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Add(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenBucket_Capacity(t *testing.T) {
	clock := newClock()
	tb := NewTokenBucket(Config{Capacity: 3, RatePS: 1})
	tb.now = clock.Now
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, tb.Allow(ctx, "1.2.3.4"), "request %d", i+1)
	}
	require.False(t, tb.Allow(ctx, "1.2.3.4"))

	// 不同 key 互不影響
	require.True(t, tb.Allow(ctx, "5.6.7.8"))
}

func TestTokenBucket_Refill(t *testing.T) {
	clock := newClock()
	tb := NewTokenBucket(Config{Capacity: 2, RatePS: 2})
	tb.now = clock.Now
	ctx := context.Background()

	require.True(t, tb.Allow(ctx, "k"))
	require.True(t, tb.Allow(ctx, "k"))
	require.False(t, tb.Allow(ctx, "k"))

	clock.Add(500 * time.Millisecond)
	require.True(t, tb.Allow(ctx, "k"))
	require.False(t, tb.Allow(ctx, "k"))

	// 補充不超過容量
	clock.Add(time.Minute)
	require.True(t, tb.Allow(ctx, "k"))
	require.True(t, tb.Allow(ctx, "k"))
	require.False(t, tb.Allow(ctx, "k"))
}

func TestTokenBucket_EvictsIdleBuckets(t *testing.T) {
	clock := newClock()
	tb := NewTokenBucket(Config{Capacity: 4, RatePS: 2})
	tb.now = clock.Now
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		require.True(t, tb.Allow(ctx, ip))
	}
	require.Equal(t, 3, tb.Len())

	// 補滿需要 2s, 還沒到不清
	clock.Add(time.Second)
	require.True(t, tb.Allow(ctx, "10.0.0.1"))
	require.Equal(t, 3, tb.Len())

	// 10.0.0.2 / 10.0.0.3 閒置 2s 已滿, 被清掉; 10.0.0.1 剛用過保留
	clock.Add(time.Second)
	require.True(t, tb.Allow(ctx, "10.0.0.4"))
	require.Equal(t, 2, tb.Len())

	// 被清掉的 key 重新進來仍是滿的
	for i := 0; i < 4; i++ {
		require.True(t, tb.Allow(ctx, "10.0.0.2"))
	}
	require.False(t, tb.Allow(ctx, "10.0.0.2"))
}

func TestTokenBucket_DefaultConfig(t *testing.T) {
	tb := NewTokenBucket(Config{})
	require.Equal(t, DefaultConfig(), tb.cfg)
}

type RedisTokenBucketTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	clock  *fakeClock
	bucket *RedisTokenBucket
	ctx    context.Context
}

func TestRedisTokenBucketSuite(t *testing.T) {
	suite.Run(t, new(RedisTokenBucketTestSuite))
}

func (s *RedisTokenBucketTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr(), MaxRetries: -1})
	s.clock = newClock()
	s.bucket = NewRedisTokenBucket(s.client, "test", Config{Capacity: 2, RatePS: 1}, nil)
	s.bucket.now = s.clock.Now
	s.ctx = context.Background()
}

func (s *RedisTokenBucketTestSuite) TearDownTest() {
	s.client.Close()
}

func (s *RedisTokenBucketTestSuite) TestAllow() {
	require.True(s.T(), s.bucket.Allow(s.ctx, "ip"))
	require.True(s.T(), s.bucket.Allow(s.ctx, "ip"))
	require.False(s.T(), s.bucket.Allow(s.ctx, "ip"))
	require.True(s.T(), s.mr.Exists("test:ratelimit:ip"))

	s.clock.Add(time.Second)
	require.True(s.T(), s.bucket.Allow(s.ctx, "ip"))
	require.False(s.T(), s.bucket.Allow(s.ctx, "ip"))
}

func (s *RedisTokenBucketTestSuite) TestFailOpen() {
	s.mr.Close()
	require.True(s.T(), s.bucket.Allow(s.ctx, "ip"))
}
