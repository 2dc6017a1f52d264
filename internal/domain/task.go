package domain

import (
	"fmt"
	"math"
	"time"
)

// Money is an amount in cents.
type Money int64

// MaxAmount is the largest task amount, 10000.00.
const MaxAmount Money = 1_000_000

// saturatedCents bounds float conversions well inside int64.
const saturatedCents = 1 << 62

// MoneyFromUnits converts a decimal amount (e.g. 5.00) to cents. Values beyond
// the int64 range saturate and NaN converts to 0.
func MoneyFromUnits(v float64) Money {
	c := math.Round(v * 100)
	switch {
	case math.IsNaN(c):
		return 0
	case c >= saturatedCents:
		return saturatedCents
	case c <= -saturatedCents:
		return -saturatedCents
	}
	return Money(c)
}

// Units returns the amount as a decimal value.
func (m Money) Units() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/100, int64(m)%100)
}

// Task is a delivery request created by a customer.
type Task struct {
	ID               int64
	Title            string
	Description      string
	Type             TaskType
	PickupLocation   string
	DropoffLocation  string
	Amount           Money
	Status           TaskStatus
	PaymentStatus    PaymentStatus
	HeldAmount       Money
	PaymentReference string
	CustomerID       int64
	AssignedTo       *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

// NewTask carries the customer-supplied fields of a task to create.
type NewTask struct {
	Title           string
	Description     string
	Type            TaskType
	PickupLocation  string
	DropoffLocation string
	Amount          Money
}

// Revision is what a caller last observed of a task; conditional updates require it to be unchanged.
type Revision struct {
	Status  TaskStatus
	Version int64
}

// Revision returns the task's current revision.
func (t Task) Revision() Revision {
	return Revision{Status: t.Status, Version: t.Version}
}

// IsAssignedTo reports whether userID is the task's rider.
func (t Task) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// CheckInvariants verifies the status/assignment and payment/held-amount invariants.
func (t Task) CheckInvariants() error {
	if (t.AssignedTo == nil) != (t.Status == StatusPending) {
		return fmt.Errorf("task %d: assigned_to must be null iff status is pending (status %s)", t.ID, t.Status)
	}
	if t.PaymentStatus.Escrowed() {
		if t.HeldAmount != t.Amount {
			return fmt.Errorf("task %d: held amount %s differs from amount %s", t.ID, t.HeldAmount, t.Amount)
		}
	} else if t.HeldAmount != 0 {
		return fmt.Errorf("task %d: held amount %s with payment %s", t.ID, t.HeldAmount, t.PaymentStatus)
	}
	return nil
}

// TaskFilter selects tasks; nil fields do not filter.
type TaskFilter struct {
	CustomerID    *int64
	AssignedTo    *int64
	Status        *TaskStatus
	PaymentStatus *PaymentStatus
}

// Stats aggregates task and user counts for the admin report.
type Stats struct {
	Users        int64
	Total        int64
	Active       int64
	Pending      int64
	InProgress   int64
	HeldPayments int64
	HeldAmount   Money
}
