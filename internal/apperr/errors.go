package apperr

import (
	"errors"
	"fmt"
)

// TransitionError reports a lifecycle action rejected for the task's current state.
// It always matches ErrInvalidTransition; Reason narrows it down to
// ErrPermissionDenied or ErrAlreadyAssigned when applicable.
type TransitionError struct {
	TaskID int64
	Action string
	Status string
	Reason error
}

func (e *TransitionError) Error() string {
	reason := ErrInvalidTransition
	if e.Reason != nil {
		reason = e.Reason
	}
	return fmt.Sprintf("%s task %d in status %s: %v", e.Action, e.TaskID, e.Status, reason)
}

// Is reports whether target is ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func (e *TransitionError) Unwrap() error { return e.Reason }

// PaymentError reports an escrow operation called out of order.
// It matches ErrPaymentPrecondition and its Reason.
type PaymentError struct {
	TaskID        int64
	Op            string
	Status        string
	PaymentStatus string
	Reason        error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s task %d (status %s, payment %s): %v", e.Op, e.TaskID, e.Status, e.PaymentStatus, e.Reason)
}

// Is reports whether target is ErrPaymentPrecondition.
func (e *PaymentError) Is(target error) bool {
	return target == ErrPaymentPrecondition
}

func (e *PaymentError) Unwrap() error { return e.Reason }

// CurrentStatus extracts the task status carried by a transition or payment error.
func CurrentStatus(err error) (string, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Status, true
	}
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Status, true
	}
	return "", false
}
