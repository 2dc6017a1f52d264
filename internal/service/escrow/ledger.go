// Package escrow enforces the payment state machine
// (unpaid -> held -> released | refunded) and ties each step to the
// delivery status of the same task.
package escrow

import (
	"fmt"
	"strings"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
)

// Op is an escrow operation.
type Op string

// List of escrow operations
const (
	OpCharge  Op = "charge"
	OpRelease Op = "release"
	OpRefund  Op = "refund"
)

// Charge holds the task amount under reference. Only the owning customer may
// pay, only once, and only while a rider is on the task.
func Charge(t domain.Task, caller domain.Caller, reference string) (domain.Task, error) {
	if caller.Role != domain.RoleCustomer || caller.UserID != t.CustomerID {
		return domain.Task{}, denied(t, OpCharge)
	}
	if t.PaymentStatus != domain.PaymentUnpaid {
		return domain.Task{}, precondition(t, OpCharge, apperr.ErrAlreadyPaid)
	}
	switch {
	case t.Status == domain.StatusPending:
		return domain.Task{}, precondition(t, OpCharge, apperr.ErrNotAssigned)
	case !t.Status.Active():
		return domain.Task{}, precondition(t, OpCharge, apperr.ErrTaskClosed)
	}
	if t.Amount <= 0 {
		return domain.Task{}, precondition(t, OpCharge, apperr.ErrNothingToCharge)
	}
	if strings.TrimSpace(reference) == "" {
		return domain.Task{}, fmt.Errorf("charge task %d: empty payment reference: %w", t.ID, apperr.ErrInvalid)
	}

	next := t
	next.PaymentStatus = domain.PaymentHeld
	next.HeldAmount = t.Amount
	next.PaymentReference = reference
	return next, nil
}

// Release pays held funds out once the rider marked the task delivered.
func Release(t domain.Task, caller domain.Caller) (domain.Task, error) {
	if caller.Role != domain.RoleCustomer || caller.UserID != t.CustomerID {
		return domain.Task{}, denied(t, OpRelease)
	}
	if t.Status != domain.StatusDelivered {
		return domain.Task{}, precondition(t, OpRelease, apperr.ErrDeliveryNotDelivered)
	}
	if t.PaymentStatus != domain.PaymentHeld {
		return domain.Task{}, precondition(t, OpRelease, apperr.ErrNoHeldFunds)
	}

	next := t
	next.PaymentStatus = domain.PaymentReleased
	return next, nil
}

// Refund returns held funds of a failed task. The owning customer or an admin may refund.
func Refund(t domain.Task, caller domain.Caller) (domain.Task, error) {
	owner := caller.Role == domain.RoleCustomer && caller.UserID == t.CustomerID
	if !owner && caller.Role != domain.RoleAdmin {
		return domain.Task{}, denied(t, OpRefund)
	}
	if t.Status != domain.StatusFailed {
		return domain.Task{}, precondition(t, OpRefund, apperr.ErrTaskNotFailed)
	}
	if t.PaymentStatus != domain.PaymentHeld {
		return domain.Task{}, precondition(t, OpRefund, apperr.ErrNoHeldFunds)
	}

	next := t
	next.PaymentStatus = domain.PaymentRefunded
	next.HeldAmount = 0
	return next, nil
}

// SettleOnConfirm releases held funds of a task the customer just confirmed.
// It reports whether anything was released.
func SettleOnConfirm(t domain.Task) (domain.Task, bool) {
	if t.Status != domain.StatusCompleted || t.PaymentStatus != domain.PaymentHeld {
		return t, false
	}
	t.PaymentStatus = domain.PaymentReleased
	return t, true
}

func denied(t domain.Task, op Op) error {
	return fmt.Errorf("%s task %d: %w", op, t.ID, apperr.ErrPermissionDenied)
}

func precondition(t domain.Task, op Op, reason error) error {
	return &apperr.PaymentError{
		TaskID:        t.ID,
		Op:            string(op),
		Status:        string(t.Status),
		PaymentStatus: string(t.PaymentStatus),
		Reason:        reason,
	}
}
