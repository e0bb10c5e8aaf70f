// Package ratelimit throttles credential endpoints per client IP.
//
// RedisLimiter shares counters across API replicas; LocalLimiter keeps them
// in process and is used when no Redis address is configured.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether another request for key is allowed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Key builds the limiter key for a purpose such as "login" and a client IP
func Key(purpose, ip string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// RedisLimiter is a fixed-window counter stored in Redis
type RedisLimiter struct {
	client   redis.Cmdable
	requests int64
	window   time.Duration
}

func NewRedisLimiter(client redis.Cmdable, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		requests: int64(requests),
		window:   window,
	}
}

// Allow increments the counter for key. The TTL is set in the same
// transaction with NX, so a window always expires even if an earlier
// request failed before setting it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	return incr.Val() <= l.requests, nil
}

// LocalLimiter is a per-key token bucket held in memory
type LocalLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows bursts of requests per key, refilled evenly over window
func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limiters:  make(map[string]*localEntry),
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		idle:      window,
		lastSweep: time.Now(),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// An idle key has refilled its bucket, so dropping it loses nothing
	if now.Sub(l.lastSweep) > l.idle {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1), nil
}
