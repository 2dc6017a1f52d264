package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"dorm-delivery/internal/config"
	"dorm-delivery/internal/http/middleware/ratelimit"
	"dorm-delivery/internal/logx"
)

// newRedisClient returns nil unless the redis rate limit backend is selected.
func newRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Backend != config.RateLimitRedis {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func newRateLimiter(cfg *config.Config, clock ratelimit.Clock, client *redis.Client) ratelimit.Limiter {
	rl := cfg.RateLimit
	switch {
	case !rl.Enabled:
		return ratelimit.NopLimiter{}
	case rl.Backend == config.RateLimitRedis && client != nil:
		return ratelimit.NewRedisLimiter(client, clock, rl.Burst, rl.Window)
	default:
		return ratelimit.NewTokenBucketLimiter(clock, ratelimit.Config{
			Rate:       rl.Rate,
			Burst:      rl.Burst,
			TTL:        rl.TTL,
			MaxBuckets: rl.MaxBuckets,
		})
	}
}

func newRateLimitClock() ratelimit.Clock {
	return ratelimit.RealClock{}
}

type rateLimitIn struct {
	dig.In
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter)
}
