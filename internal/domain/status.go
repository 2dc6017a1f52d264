package domain

type (
	// TaskStatus represents the delivery status of a task.
	TaskStatus string
	// PaymentStatus represents the escrow status of a task.
	PaymentStatus string
	// TaskType distinguishes parcel and canteen deliveries.
	TaskType string
	// Role is the caller's role in the marketplace.
	Role string
)

// List of possible delivery statuses
const (
	StatusPending    TaskStatus = "pending"
	StatusAccepted   TaskStatus = "accepted"
	StatusInProgress TaskStatus = "in_progress"
	StatusDelivered  TaskStatus = "delivered"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// List of possible payment statuses
const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentHeld     PaymentStatus = "held"
	PaymentReleased PaymentStatus = "released"
	PaymentRefunded PaymentStatus = "refunded"
)

// List of task types
const (
	TaskTypeParcel  TaskType = "parcel"
	TaskTypeCanteen TaskType = "canteen"
)

// List of roles
const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleDelivery Role = "delivery"
)

var allowedStatuses = [...]TaskStatus{
	StatusPending, StatusAccepted, StatusInProgress, StatusDelivered, StatusCompleted, StatusFailed,
}

var allowedPaymentStatuses = [...]PaymentStatus{
	PaymentUnpaid, PaymentHeld, PaymentReleased, PaymentRefunded,
}

// AllStatuses returns every delivery status in lifecycle order.
func AllStatuses() []TaskStatus {
	return append([]TaskStatus(nil), allowedStatuses[:]...)
}

// Valid checks if the TaskStatus is valid
func (s TaskStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further lifecycle transitions are possible.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Active reports whether a rider is working on the task.
func (s TaskStatus) Active() bool {
	return s == StatusAccepted || s == StatusInProgress || s == StatusDelivered
}

// Valid checks if the PaymentStatus is valid
func (s PaymentStatus) Valid() bool {
	for _, v := range allowedPaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Escrowed reports whether the task amount sits with the platform or was paid out.
func (s PaymentStatus) Escrowed() bool {
	return s == PaymentHeld || s == PaymentReleased
}

// Valid checks if the TaskType is valid
func (t TaskType) Valid() bool {
	return t == TaskTypeParcel || t == TaskTypeCanteen
}

// Valid checks if the Role is valid
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer || r == RoleDelivery
}
