package kafka

import (
	"time"

	"dorm-delivery/internal/domain"
)

// TaskEventDTO is the wire form of domain.TaskEvent. Amounts are decimal units.
type TaskEventDTO struct {
	TaskID        int64     `json:"task_id"`
	Action        string    `json:"action"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	ActorID       int64     `json:"actor_id"`
	CustomerID    int64     `json:"customer_id"`
	AssignedTo    *int64    `json:"assigned_to"`
	HeldAmount    float64   `json:"held_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// FromDomain converts a domain.TaskEvent to its wire form.
func FromDomain(e domain.TaskEvent) TaskEventDTO {
	return TaskEventDTO{
		TaskID:        e.TaskID,
		Action:        e.Action,
		Status:        string(e.Status),
		PaymentStatus: string(e.PaymentStatus),
		ActorID:       e.ActorID,
		CustomerID:    e.CustomerID,
		AssignedTo:    e.AssignedTo,
		HeldAmount:    e.HeldAmount.Units(),
		OccurredAt:    e.OccurredAt,
	}
}

// ToDomain converts TaskEventDTO to domain.TaskEvent
func ToDomain(dto TaskEventDTO) domain.TaskEvent {
	return domain.TaskEvent{
		TaskID:        dto.TaskID,
		Action:        dto.Action,
		Status:        domain.TaskStatus(dto.Status),
		PaymentStatus: domain.PaymentStatus(dto.PaymentStatus),
		ActorID:       dto.ActorID,
		CustomerID:    dto.CustomerID,
		AssignedTo:    dto.AssignedTo,
		HeldAmount:    domain.MoneyFromUnits(dto.HeldAmount),
		OccurredAt:    dto.OccurredAt,
	}
}
