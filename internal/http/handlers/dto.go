package handlers

import "time"

type taskDTO struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	TaskType         string    `json:"task_type"`
	PickupLocation   string    `json:"pickup_location"`
	DropoffLocation  string    `json:"dropoff_location"`
	Amount           float64   `json:"amount"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	HeldAmount       float64   `json:"held_amount"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	CustomerID       int64     `json:"customer_id"`
	AssignedTo       *int64    `json:"assigned_to"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int64     `json:"version"`
}

type createTaskRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	TaskType        string  `json:"task_type"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	Amount          float64 `json:"amount"`
}

type userDTO struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	Rating float64 `json:"rating"`
}

type statsDTO struct {
	Users        int64   `json:"users"`
	TotalTasks   int64   `json:"total_tasks"`
	ActiveTasks  int64   `json:"active_tasks"`
	PendingTasks int64   `json:"pending_tasks"`
	InProgress   int64   `json:"in_progress_tasks"`
	HeldPayments int64   `json:"held_payments"`
	HeldAmount   float64 `json:"held_amount"`
}
