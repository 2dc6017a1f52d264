package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"dorm-delivery/internal/config"
	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/gateway/payment"
	"dorm-delivery/internal/http/handlers"
	"dorm-delivery/internal/http/middleware"
	"dorm-delivery/internal/http/middleware/ratelimit"
	"dorm-delivery/internal/http/router"
	"dorm-delivery/internal/logx"
	"dorm-delivery/internal/repository"
	"dorm-delivery/internal/repository/memory"
	"dorm-delivery/internal/service/report"
	"dorm-delivery/internal/service/tasks"
	"dorm-delivery/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the HTTP service container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, registerHTTP)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the settlement worker container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, registerWorker)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context, registerEntry func(*dig.Container) error) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerEntry(container); err != nil {
		return nil, fmt.Errorf("entry: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns the HTTP service container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds and returns the settlement worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		newLogger,
		newRegistry,
		newMetrics,
	)
}

// taskStore is what both storage drivers provide.
type taskStore interface {
	tasks.TaskRepository
	Stats(ctx context.Context) (domain.Stats, error)
}

type storage struct {
	Tasks taskStore
	Users tasks.UserDirectory
	Holds payment.Ledger
	Close func()
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerStorage := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*storage, error) {
		if cfg.Storage == config.StorageMemory {
			logger.Warn("using in-memory storage; data is lost on restart")
			store := memory.NewStore()
			return &storage{Tasks: store, Users: store.Users(), Holds: payment.NewMemoryLedger(), Close: func() {}}, nil
		}
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		return &storage{
			Tasks: repository.NewTaskRepo(pool),
			Users: repository.NewUserRepo(pool),
			Holds: repository.NewHoldRepo(pool),
			Close: pool.Close,
		}, nil
	}
	return provideAll(container,
		providerStorage,
		func(s *storage) taskStore { return s.Tasks },
		func(s *storage) tasks.UserDirectory { return s.Users },
		func(s *storage) payment.Ledger { return s.Holds },
	)
}

type gatewayIn struct {
	dig.In
	Cfg     *config.Config
	Logger  logx.Logger
	Ledger  payment.Ledger
	Retries prometheus.Counter `name:"payment_gateway_retries_total"`
}

func newPaymentGateway(in gatewayIn) tasks.PaymentGateway {
	rc := in.Cfg.PaymentRetry
	return payment.NewRetryingGateway(payment.NewLedgerGateway(in.Ledger, nil), in.Logger, in.Retries, payment.RetryConfig{
		MaxAttempts: rc.MaxAttempts,
		BaseDelay:   rc.BaseDelay,
		MaxDelay:    rc.MaxDelay,
	})
}

func newKafkaPublisher(cfg *config.Config) (*kafka.Publisher, error) {
	return kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TaskEventsTopic)
}

func newEventPublisher(p *kafka.Publisher, logger logx.Logger) tasks.EventPublisher {
	if p == nil {
		logger.Info("kafka not configured, task events are not published")
		return kafka.NopPublisher{}
	}
	return p
}

type coordinatorIn struct {
	dig.In
	Cfg         *config.Config
	Logger      logx.Logger
	Tasks       taskStore
	Users       tasks.UserDirectory
	Gateway     tasks.PaymentGateway
	Events      tasks.EventPublisher
	Transitions *prometheus.CounterVec `name:"task_transitions_total"`
	Conflicts   *prometheus.CounterVec `name:"task_update_conflicts_total"`
}

func newCoordinator(in coordinatorIn) *tasks.Coordinator {
	return tasks.NewCoordinator(in.Tasks, in.Users, in.Gateway, in.Events, in.Logger,
		tasks.Metrics{Transitions: in.Transitions, Conflicts: in.Conflicts},
		tasks.Config{MaxAttempts: in.Cfg.Coordinator.MaxAttempts, Timeout: in.Cfg.Coordinator.Timeout},
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		newPaymentGateway,
		newKafkaPublisher,
		newEventPublisher,
		newCoordinator,
		func(s taskStore, cfg *config.Config) *report.Service {
			return report.NewService(s, cfg.Coordinator.Timeout)
		},
	)
}

type routerIn struct {
	dig.In
	Cfg       *config.Config
	Logger    logx.Logger
	Base      *handlers.Handlers
	Tasks     *handlers.TaskHandler
	Admin     *handlers.AdminHandler
	Users     *handlers.UserHandler
	Identity  *tasks.Coordinator
	RateLimit *ratelimit.Middleware
	Metrics   middleware.HTTPMetrics
	Registry  *prometheus.Registry
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Logger:    in.Logger,
		Base:      in.Base,
		Tasks:     in.Tasks,
		Admin:     in.Admin,
		Users:     in.Users,
		Identity:  in.Identity,
		RateLimit: in.RateLimit,
		Metrics:   in.Metrics,
		Gatherer:  in.Registry,
		Pprof:     in.Cfg.Pprof,
	})
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(c *tasks.Coordinator) handlers.TaskUsecase { return c },
		handlers.NewTaskHandler,
		func(s *report.Service) handlers.StatsUsecase { return s },
		handlers.NewAdminHandler,
		func(c *tasks.Coordinator) handlers.UserUsecase { return c },
		handlers.NewUserHandler,
		newRedisClient,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		newRouter,
		serverProvider,
	)
}
