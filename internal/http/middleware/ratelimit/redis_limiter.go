package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter counts requests in a sliding window shared by every replica.
// Each key is a sorted set of request timestamps.
type RedisLimiter struct {
	client redis.Cmdable
	clock  Clock
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter allows up to limit requests per key within window.
func NewRedisLimiter(client redis.Cmdable, clock Clock, limit int, window time.Duration) *RedisLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RedisLimiter{client: client, clock: clock, limit: limit, window: window, prefix: "ratelimit:"}
}

// Allow records the request and reports whether key is still within its limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.clock.Now().UnixNano()
	from := now - l.window.Nanoseconds()
	rkey := l.prefix + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", strconv.FormatInt(from, 10))
	pipe.ZAdd(ctx, rkey, redis.Z{Score: float64(now), Member: requestMember(now)})
	card := pipe.ZCard(ctx, rkey)
	pipe.Expire(ctx, rkey, 2*l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %q: %w", key, err)
	}
	return card.Val() <= int64(l.limit), nil
}

// requestMember is unique per request; replicas share timestamps.
func requestMember(now int64) string {
	return strconv.FormatInt(now, 10) + "-" + uuid.NewString()
}
