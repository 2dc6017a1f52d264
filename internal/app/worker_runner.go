package app

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/config"
	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/gateway/payment"
	"dorm-delivery/internal/logx"
	"dorm-delivery/internal/service/settlement"
	"dorm-delivery/internal/service/tasks"
	"dorm-delivery/internal/transport/kafka"
)

// WorkerRunner runs the settlement worker
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker using the provided DI container until its context is done
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

type settlementIn struct {
	dig.In
	Cfg         *config.Config
	Logger      logx.Logger
	Tasks       taskStore
	Coordinator *tasks.Coordinator
	Refunds     *prometheus.CounterVec `name:"settlement_refunds_total"`
}

func newProcessor(in settlementIn) *settlement.Processor {
	return settlement.NewProcessor(in.Coordinator, in.Logger, in.Refunds)
}

func newSweeper(in settlementIn) *settlement.Sweeper {
	return settlement.NewSweeper(in.Tasks, in.Coordinator, in.Logger, in.Refunds)
}

func newKafkaConsumer(cfg *config.Config, logger logx.Logger, p *settlement.Processor) (*kafka.Consumer, error) {
	k := cfg.Kafka
	return kafka.NewConsumer(logger, k.Brokers, k.GroupID, k.TaskEventsTopic, settlementHandler(p))
}

// settlementHandler marks errors that a redelivery cannot fix as permanent.
func settlementHandler(p *settlement.Processor) kafka.HandleFunc {
	return func(ctx context.Context, e domain.TaskEvent) error {
		err := p.Handle(ctx, e)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, apperr.ErrInvalidTransition),
			errors.Is(err, apperr.ErrPermissionDenied),
			errors.Is(err, apperr.ErrPaymentPrecondition),
			errors.Is(err, apperr.ErrInvalid),
			errors.Is(err, payment.ErrUnknownReference),
			errors.Is(err, payment.ErrInvalidState),
			errors.Is(err, payment.ErrReferenceMismatch):
			return kafka.Permanent(err)
		default:
			return err
		}
	}
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newProcessor,
		newSweeper,
		newKafkaConsumer,
	)
}

type workerIn struct {
	dig.In
	Ctx       context.Context
	Cfg       *config.Config
	Logger    logx.Logger
	Storage   *storage
	Publisher *kafka.Publisher
	Consumer  *kafka.Consumer
	Sweeper   *settlement.Sweeper
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(in workerIn) error {
	defer closeWorker(in)

	g, ctx := errgroup.WithContext(in.Ctx)
	if in.Consumer != nil {
		g.Go(func() error { return in.Consumer.Run(ctx) })
	} else {
		in.Logger.Warn("kafka not configured, settlement relies on the sweeper only")
	}
	g.Go(func() error { return in.Sweeper.Run(ctx, in.Cfg.Settlement.SweepSchedule) })

	in.Logger.Info("settlement worker started", logx.String("schedule", in.Cfg.Settlement.SweepSchedule))
	return g.Wait()
}

func closeWorker(in workerIn) {
	if err := in.Consumer.Close(); err != nil {
		in.Logger.Error("kafka consumer close error", logx.Err(err))
	}
	if err := in.Publisher.Close(); err != nil {
		in.Logger.Error("kafka producer close error", logx.Err(err))
	}
	in.Storage.Close()
	_ = in.Logger.Sync()
}
