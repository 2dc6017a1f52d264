package tasks

import (
	"context"
	"fmt"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
)

// GetTask returns a task visible to the caller: its owner, its rider, any
// admin, and delivery users while the task is still pending.
func (c *Coordinator) GetTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	t, err := c.load(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !canView(caller, t) {
		return domain.Task{}, fmt.Errorf("view task %d: %w", id, apperr.ErrPermissionDenied)
	}
	return t, nil
}

// ListCustomerTasks lists the caller's own tasks. Admins see every customer's tasks.
// CustomerID and AssignedTo in f are ignored for customers.
func (c *Coordinator) ListCustomerTasks(ctx context.Context, caller domain.Caller, f domain.TaskFilter) ([]domain.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	switch caller.Role {
	case domain.RoleCustomer:
		f.CustomerID = &caller.UserID
		f.AssignedTo = nil
	case domain.RoleAdmin:
	default:
		return nil, fmt.Errorf("list customer tasks: %w", apperr.ErrPermissionDenied)
	}
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	return c.tasks.List(ctx, f)
}

// ListAssignedTasks lists tasks the calling rider accepted.
func (c *Coordinator) ListAssignedTasks(ctx context.Context, caller domain.Caller) ([]domain.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if caller.Role != domain.RoleDelivery {
		return nil, fmt.Errorf("list assigned tasks: %w", apperr.ErrPermissionDenied)
	}
	return c.tasks.List(ctx, domain.TaskFilter{AssignedTo: &caller.UserID})
}

// ListAvailableTasks lists pending tasks open for acceptance.
func (c *Coordinator) ListAvailableTasks(ctx context.Context, caller domain.Caller) ([]domain.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if caller.Role != domain.RoleDelivery && caller.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("list available tasks: %w", apperr.ErrPermissionDenied)
	}
	pending := domain.StatusPending
	return c.tasks.List(ctx, domain.TaskFilter{Status: &pending})
}

func canView(caller domain.Caller, t domain.Task) bool {
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleCustomer:
		return t.CustomerID == caller.UserID
	case domain.RoleDelivery:
		return t.Status == domain.StatusPending || t.IsAssignedTo(caller.UserID)
	default:
		return false
	}
}

func validateFilter(f domain.TaskFilter) error {
	if f.Status != nil && !f.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", *f.Status, apperr.ErrInvalid)
	}
	if f.PaymentStatus != nil && !f.PaymentStatus.Valid() {
		return fmt.Errorf("unknown payment status %q: %w", *f.PaymentStatus, apperr.ErrInvalid)
	}
	return nil
}
