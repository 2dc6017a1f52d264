package settlement

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/logx"
)

// Sweeper periodically refunds every failed task that still holds money.
type Sweeper struct {
	tasks    TaskLister
	refunder Refunder
	logger   logx.Logger
	refunds  *prometheus.CounterVec
}

// NewSweeper creates a Sweeper. refunds may be nil.
func NewSweeper(tasks TaskLister, refunder Refunder, logger logx.Logger, refunds *prometheus.CounterVec) *Sweeper {
	return &Sweeper{tasks: tasks, refunder: refunder, logger: logger, refunds: refunds}
}

// Sweep runs one pass and returns how many tasks it tried to refund.
// It keeps going past individual failures and returns the first one.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	failed, held := domain.StatusFailed, domain.PaymentHeld
	list, err := s.tasks.List(ctx, domain.TaskFilter{Status: &failed, PaymentStatus: &held})
	if err != nil {
		return 0, fmt.Errorf("list failed held tasks: %w", err)
	}

	var firstErr error
	for _, t := range list {
		if err := refund(ctx, s.refunder, s.logger, s.refunds, "sweep", t.ID); err != nil {
			s.logger.Error("settlement: sweep refund failed", logx.TaskID(t.ID), logx.Err(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return len(list), firstErr
}

// Run sweeps on schedule (standard 5-field cron spec or a descriptor like
// "@every 1m") until ctx is done.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		n, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Warn("settlement: sweep finished with errors", logx.Int("tasks", n), logx.Err(err))
			return
		}
		s.logger.Debug("settlement: sweep finished", logx.Int("tasks", n))
	}); err != nil {
		return fmt.Errorf("settlement schedule %q: %w", schedule, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
