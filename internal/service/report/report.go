// Package report serves the admin dashboard figures.
package report

import (
	"context"
	"fmt"
	"time"

	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/service/lifecycle"
)

type statsSource interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

// Service computes the admin report.
type Service struct {
	source           statsSource
	operationTimeout time.Duration
}

// NewService creates a report Service.
func NewService(source statsSource, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{source: source, operationTimeout: timeout}
}

// Stats returns user and task counts. Only admins may read them.
func (s *Service) Stats(ctx context.Context, caller domain.Caller) (domain.Stats, error) {
	if err := lifecycle.Authorize(caller, domain.RoleAdmin); err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	st, err := s.source.Stats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
