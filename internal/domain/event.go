package domain

import "time"

// TaskEvent describes one committed change of a task.
type TaskEvent struct {
	TaskID        int64
	Action        string
	Status        TaskStatus
	PaymentStatus PaymentStatus
	ActorID       int64
	CustomerID    int64
	AssignedTo    *int64
	HeldAmount    Money
	OccurredAt    time.Time
}

// NewTaskEvent builds the event for t after action by actorID.
func NewTaskEvent(t Task, action string, actorID int64, at time.Time) TaskEvent {
	var assigned *int64
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		assigned = &v
	}
	return TaskEvent{
		TaskID:        t.ID,
		Action:        action,
		Status:        t.Status,
		PaymentStatus: t.PaymentStatus,
		ActorID:       actorID,
		CustomerID:    t.CustomerID,
		AssignedTo:    assigned,
		HeldAmount:    t.HeldAmount,
		OccurredAt:    at,
	}
}
