package handlers

import (
	"context"

	"dorm-delivery/internal/domain"
)

// TaskUsecase is the task API the handlers drive.
type TaskUsecase interface {
	CreateTask(ctx context.Context, caller domain.Caller, in domain.NewTask) (domain.Task, error)
	GetTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
	ListCustomerTasks(ctx context.Context, caller domain.Caller, f domain.TaskFilter) ([]domain.Task, error)
	ListAssignedTasks(ctx context.Context, caller domain.Caller) ([]domain.Task, error)
	ListAvailableTasks(ctx context.Context, caller domain.Caller) ([]domain.Task, error)

	AcceptTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
	StartTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
	MarkDelivered(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
	FailTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
	ConfirmDelivery(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)

	ChargeForTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
	ReleasePayment(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
	RefundPayment(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error)
}

// StatsUsecase serves the admin report.
type StatsUsecase interface {
	Stats(ctx context.Context, caller domain.Caller) (domain.Stats, error)
}

// UserUsecase looks up the calling account.
type UserUsecase interface {
	CurrentUser(ctx context.Context, userID int64) (domain.User, error)
}
