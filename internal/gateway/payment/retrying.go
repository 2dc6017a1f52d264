package payment

import (
	"context"
	"errors"
	"time"

	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/logx"
)

type gateway interface {
	Hold(ctx context.Context, reference string, taskID int64, amount domain.Money) error
	Release(ctx context.Context, reference string) error
	Refund(ctx context.Context, reference string) error
	Void(ctx context.Context, reference string) error
}

type counter interface {
	Inc()
}

// RetryConfig describes how RetryingGateway retries transient failures.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries ErrUnavailable with exponential backoff.
// Operations are idempotent per reference, so a retried call never double-charges.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway wraps next; it returns nil when next is nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Hold implements the gateway with retries.
func (g *RetryingGateway) Hold(ctx context.Context, reference string, taskID int64, amount domain.Money) error {
	return g.do(ctx, "Hold", reference, func() error { return g.next.Hold(ctx, reference, taskID, amount) })
}

// Release implements the gateway with retries.
func (g *RetryingGateway) Release(ctx context.Context, reference string) error {
	return g.do(ctx, "Release", reference, func() error { return g.next.Release(ctx, reference) })
}

// Refund implements the gateway with retries.
func (g *RetryingGateway) Refund(ctx context.Context, reference string) error {
	return g.do(ctx, "Refund", reference, func() error { return g.next.Refund(ctx, reference) })
}

// Void implements the gateway with retries.
func (g *RetryingGateway) Void(ctx context.Context, reference string) error {
	return g.do(ctx, "Void", reference, func() error { return g.next.Void(ctx, reference) })
}

func (g *RetryingGateway) do(ctx context.Context, method, reference string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("payment gateway retry",
			logx.String("method", method),
			logx.String("reference", reference),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// backoff doubles base per attempt, capped at max.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
