//go:generate mockgen -source=contracts.go -destination=settlement_mocks_test.go -package=settlement_test

package settlement

import (
	"context"

	"dorm-delivery/internal/domain"
)

// Refunder refunds held funds of a failed task.
type Refunder interface {
	RefundPayment(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
}

// TaskLister finds tasks by filter.
type TaskLister interface {
	List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error)
}
