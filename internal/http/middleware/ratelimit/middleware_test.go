package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/http/middleware"
	"dorm-delivery/internal/metrics"
	testlog "dorm-delivery/internal/testutil"
)

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func okHandler(called *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called++
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_AllowsRequest(t *testing.T) {
	t.Parallel()

	called := 0
	lim := &stubLimiter{allow: true}
	h := New(testlog.New().Logger(), nil, lim).Handler()(okHandler(&called))

	r := httptest.NewRequest(http.MethodGet, "http://example/tasks", nil)
	r.RemoteAddr = "1.2.3.4:5678"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, called)
	require.Equal(t, []string{"ip:1.2.3.4"}, lim.keys)
}

func TestMiddleware_Blocks_Returns429AndIncrementsCounter(t *testing.T) {
	t.Parallel()

	called := 0
	counter := metrics.NewRateLimitExceededTotal()
	rec := testlog.New()
	h := New(rec.Logger(), counter, &stubLimiter{allow: false}).Handler()(okHandler(&called))

	r := httptest.NewRequest(http.MethodPost, "http://example/tasks/1/accept", nil)
	r.RemoteAddr = "1.2.3.4:5678"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, 0, called)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.Equal(t, `{"error":"too many requests"}`, w.Body.String())
	require.Equal(t, 1.0, testutil.ToFloat64(counter))
	require.Equal(t, []string{"rate limit exceeded"}, rec.Messages("warn"))
}

func TestMiddleware_KeysIdentifiedCallersByUser(t *testing.T) {
	t.Parallel()

	called := 0
	lim := &stubLimiter{allow: true}
	h := New(nil, nil, lim).Handler()(okHandler(&called))

	r := httptest.NewRequest(http.MethodGet, "http://example/tasks", nil)
	r = r.WithContext(middleware.WithCaller(r.Context(), domain.Caller{UserID: 42, Role: domain.RoleDelivery}))
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.Equal(t, []string{"user:42"}, lim.keys)
}

func TestMiddleware_KeysByHeaderBeforeIdentity(t *testing.T) {
	t.Parallel()

	called := 0
	lim := &stubLimiter{allow: true}
	h := New(nil, nil, lim).Handler()(okHandler(&called))

	for _, raw := range []string{"17", " 17 ", "abc", "-3", ""} {
		r := httptest.NewRequest(http.MethodGet, "http://example/tasks", nil)
		r.RemoteAddr = "10.0.0.9:4000"
		r.Header.Set(middleware.UserIDHeader, raw)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	require.Equal(t, []string{"user:17", "user:17", "ip:10.0.0.9", "ip:10.0.0.9", "ip:10.0.0.9"}, lim.keys)
}

func TestMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	t.Parallel()

	called := 0
	rec := testlog.New()
	h := New(rec.Logger(), nil, &stubLimiter{err: errors.New("redis down")}).Handler()(okHandler(&called))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/tasks", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, called)
	require.Equal(t, []string{"rate limiter unavailable"}, rec.Messages("warn"))
}

func TestMiddleware_NilLimiterAllows(t *testing.T) {
	t.Parallel()

	called := 0
	h := New(nil, nil, nil).Handler()(okHandler(&called))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/", nil))
	require.Equal(t, 1, called)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "not-a-hostport"
	require.Equal(t, "not-a-hostport", clientIP(r))

	r.RemoteAddr = ""
	require.Equal(t, "unknown", clientIP(r))
}
