package app

import (
	"fmt"
	"os"

	"dorm-delivery/internal/config"
	"dorm-delivery/internal/logx"
)

func newLogger(cfg *config.Config) (logx.Logger, error) {
	logger, err := logx.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}
