package ratelimit

import "context"

// NopLimiter allows everything; used when rate limiting is disabled.
type NopLimiter struct{}

// Allow always returns true
func (NopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
