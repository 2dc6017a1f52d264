//go:generate mockgen -source=contracts.go -destination=tasks_mocks_test.go -package=tasks_test

package tasks

import (
	"context"

	"dorm-delivery/internal/domain"
)

// TaskRepository stores tasks with optimistic, revision-checked updates.
type TaskRepository interface {
	Create(ctx context.Context, customerID int64, in domain.NewTask) (domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, next domain.Task, expected domain.Revision) (domain.Task, error)
}

// UserDirectory resolves user ids to accounts.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
}

// PaymentGateway moves escrowed money. Every call is idempotent per reference.
type PaymentGateway interface {
	Hold(ctx context.Context, reference string, taskID int64, amount domain.Money) error
	Release(ctx context.Context, reference string) error
	Refund(ctx context.Context, reference string) error
	Void(ctx context.Context, reference string) error
}

// EventPublisher announces committed task changes.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.TaskEvent) error
}
