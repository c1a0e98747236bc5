package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type Config struct {
	Capacity int     // bucket 最大 token 數
	RatePS   float64 // 每秒補充 token 數
}

func DefaultConfig() Config {
	return Config{
		Capacity: 100,
		RatePS:   50,
	}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

/*
TokenBucket 單機版, 每個 key 一個 bucket
取 token 時才依經過時間補充, 不需要背景 goroutine
閒置超過 idle (補滿所需時間) 的 bucket 已經是滿的, 刪掉與重建等價, 每隔 idle 清一次
*/
type TokenBucket struct {
	cfg       Config
	mu        sync.Mutex
	buckets   map[string]*bucket
	now       func() time.Time
	idle      time.Duration
	lastSweep time.Time
}

func NewTokenBucket(cfg Config) *TokenBucket {
	if cfg.Capacity <= 0 {
		cfg = DefaultConfig()
	}
	idle := time.Minute
	if cfg.RatePS > 0 {
		idle = time.Duration(float64(cfg.Capacity) / cfg.RatePS * float64(time.Second))
	}
	return &TokenBucket{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		idle:    idle,
	}
}

// sweep 呼叫前必須持有 t.mu
func (t *TokenBucket) sweep(now time.Time) {
	if t.lastSweep.IsZero() {
		t.lastSweep = now
		return
	}
	if now.Sub(t.lastSweep) < t.idle {
		return
	}
	for key, b := range t.buckets {
		if now.Sub(b.lastRefill) >= t.idle {
			delete(t.buckets, key)
		}
	}
	t.lastSweep = now
}

func (t *TokenBucket) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

func (t *TokenBucket) Allow(_ context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweep(now)
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(t.cfg.Capacity), lastRefill: now}
		t.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(float64(t.cfg.Capacity), b.tokens+elapsed*t.cfg.RatePS)
		b.lastRefill = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
