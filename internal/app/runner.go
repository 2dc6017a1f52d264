package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"dorm-delivery/internal/logx"
	"dorm-delivery/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// MustRun starts the HTTP server using the provided DI container
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

type serviceIn struct {
	dig.In
	Ctx       context.Context
	Server    *http.Server
	Logger    logx.Logger
	Storage   *storage
	Publisher *kafka.Publisher
	Redis     *redis.Client
}

func run(container *dig.Container) error {
	return container.Invoke(func(in serviceIn) error {
		errCh := startServer(in.Server, in.Logger)
		defer closeResources(in)

		select {
		case err := <-errCh:
			return err
		case <-in.Ctx.Done():
		}
		in.Logger.Info("shutting down service-delivery")
		gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
		return nil
	})
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("service-delivery listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(in serviceIn) {
	if err := in.Server.Close(); err != nil {
		in.Logger.Error("server close error", logx.Err(err))
	}
	if err := in.Publisher.Close(); err != nil {
		in.Logger.Error("kafka producer close error", logx.Err(err))
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			in.Logger.Error("redis close error", logx.Err(err))
		}
	}
	in.Storage.Close()
	_ = in.Logger.Sync()
}
