package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"dorm-delivery/internal/config"
	"dorm-delivery/internal/http/middleware/ratelimit"
	"dorm-delivery/internal/logx"
	"dorm-delivery/internal/service/tasks"
	"dorm-delivery/internal/transport/kafka"
)

func TestProvideAll_ReportsFailingProvider(t *testing.T) {
	c := dig.New()
	err := provideAll(c, func() int { return 1 }, "not a constructor")
	require.Error(t, err)
	require.Contains(t, err.Error(), "provide string")
}

func TestContainer_MemoryStorageServesHTTP(t *testing.T) {
	memoryEnv(t)

	var fatal string
	c := NewContainerBuilder().
		WithLogFatalf(func(format string, args ...interface{}) { fatal = fmt.Sprintf(format, args...) }).
		MustBuild(context.Background())
	require.Empty(t, fatal)

	err := c.Invoke(func(srv *http.Server, events tasks.EventPublisher, limiter ratelimit.Limiter) {
		require.Equal(t, ":18080", srv.Addr)
		require.IsType(t, kafka.NopPublisher{}, events)
		require.IsType(t, &ratelimit.TokenBucketLimiter{}, limiter)

		ts := httptest.NewServer(srv.Handler)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/ping")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = http.Get(ts.URL + "/tasks")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, err = http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.Contains(t, string(body), "http_requests_total")
		require.Contains(t, string(body), "go_goroutines")
	})
	require.NoError(t, err)
}

func TestContainer_PostgresStorageUsesDBConnect(t *testing.T) {
	resetFlags(t)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("LOG_LEVEL", "error")

	boom := errors.New("db down")
	var gotDSN string
	c := NewContainerBuilder().
		WithDBConnect(func(_ context.Context, _ logx.Logger, dsn string, _ int, _ time.Duration) (*pgxpool.Pool, error) {
			gotDSN = dsn
			return nil, boom
		}).
		MustBuild(context.Background())

	err := c.Invoke(func(*http.Server) {})
	require.ErrorIs(t, err, boom)
	require.Contains(t, gotDSN, "@db.internal:")
}

func TestContainer_InvalidConfigFailsOnInvoke(t *testing.T) {
	memoryEnv(t)
	t.Setenv("LOG_LEVEL", "loud")

	c := MustBuildContainer(context.Background())
	err := c.Invoke(func(logx.Logger) {})
	require.Error(t, err)
}

func TestNewRateLimiter_Backends(t *testing.T) {
	clock := ratelimit.RealClock{}

	cfg := &config.Config{RateLimit: config.DefaultRateLimit()}
	cfg.RateLimit.Enabled = false
	require.IsType(t, ratelimit.NopLimiter{}, newRateLimiter(cfg, clock, nil))

	cfg.RateLimit.Enabled = true
	require.IsType(t, &ratelimit.TokenBucketLimiter{}, newRateLimiter(cfg, clock, nil))

	cfg.RateLimit.Backend = config.RateLimitRedis
	require.Nil(t, newRedisClient(&config.Config{RateLimit: config.DefaultRateLimit()}))
	client := newRedisClient(cfg)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })
	require.IsType(t, &ratelimit.RedisLimiter{}, newRateLimiter(cfg, clock, client))
	require.IsType(t, &ratelimit.TokenBucketLimiter{}, newRateLimiter(cfg, clock, (*redis.Client)(nil)))
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(&config.Config{LogLevel: "loud"})
	require.Error(t, err)

	l, err := newLogger(&config.Config{LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)
}
