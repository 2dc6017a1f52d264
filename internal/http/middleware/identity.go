package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/logx"
)

// UserIDHeader carries the caller's user id, set by the authentication proxy.
const UserIDHeader = "X-User-ID"

// Identifier resolves a user id to a caller.
type Identifier interface {
	Identify(ctx context.Context, userID int64) (domain.Caller, error)
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored by Identity.
func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(domain.Caller)
	return c, ok
}

// Identity resolves X-User-ID and rejects requests without a known user with 401.
func Identity(logger logx.Logger, ids Identifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := HeaderUserID(r)
			if !ok {
				reject(logger, w, http.StatusUnauthorized, `{"error":"missing or invalid X-User-ID"}`)
				return
			}

			caller, err := ids.Identify(r.Context(), id)
			switch {
			case err == nil:
			case errors.Is(err, apperr.ErrUnauthenticated):
				reject(logger, w, http.StatusUnauthorized, `{"error":"unknown user"}`)
				return
			default:
				logger.Error("identify caller failed", logx.UserID(id), logx.Err(err))
				reject(logger, w, http.StatusInternalServerError, `{"error":"internal error"}`)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// HeaderUserID parses X-User-ID. It says nothing about whether the user exists.
func HeaderUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(UserIDHeader)), 10, 64)
	return id, err == nil && id > 0
}

func reject(logger logx.Logger, w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		logger.Debug("reject response write failed", logx.Err(err))
	}
}
