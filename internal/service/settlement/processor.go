// Package settlement refunds money held on failed tasks, reacting to task
// events and sweeping on a schedule for anything the events missed.
package settlement

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/logx"
)

// Processor handles task events.
type Processor struct {
	refunder Refunder
	logger   logx.Logger
	refunds  *prometheus.CounterVec
	factory  *actionFactory
}

// NewProcessor creates a Processor. refunds may be nil.
func NewProcessor(refunder Refunder, logger logx.Logger, refunds *prometheus.CounterVec) *Processor {
	p := &Processor{refunder: refunder, logger: logger, refunds: refunds}
	p.factory = newActionFactory(p.onFailed)
	return p
}

// Handle processes a single task event. Unknown actions are ignored.
func (p *Processor) Handle(ctx context.Context, e domain.TaskEvent) error {
	fn, ok := p.factory.get(e.Action)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onFailed(ctx context.Context, e domain.TaskEvent) error {
	if e.Status != domain.StatusFailed || e.PaymentStatus != domain.PaymentHeld {
		return nil
	}
	return refund(ctx, p.refunder, p.logger, p.refunds, "event", e.TaskID)
}

// refund issues a system refund; a task someone else already settled is not an error.
func refund(ctx context.Context, r Refunder, logger logx.Logger, refunds *prometheus.CounterVec, trigger string, taskID int64) error {
	t, err := r.RefundPayment(ctx, domain.SystemCaller, taskID)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrNoHeldFunds), errors.Is(err, apperr.ErrNotFound):
		logger.Debug("settlement: nothing to refund", logx.TaskID(taskID), logx.Err(err))
		return nil
	default:
		return err
	}

	if refunds != nil {
		refunds.WithLabelValues(trigger).Inc()
	}
	logger.Info("settlement: refunded failed task",
		logx.TaskID(t.ID),
		logx.String("trigger", trigger),
		logx.String("reference", t.PaymentReference),
	)
	return nil
}
