package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthenticated indicates that the caller could not be identified.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrPermissionDenied indicates a role or ownership mismatch (HTTP 403).
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidTransition indicates that an action is illegal from the task's current state.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrAlreadyAssigned indicates that another delivery user already accepted the task.
var ErrAlreadyAssigned = errors.New("task already assigned")

// ErrConflict indicates an optimistic version mismatch on a conditional update.
var ErrConflict = errors.New("conflict")

// ErrBusy is returned when conflict retries are exhausted; the caller may try again.
var ErrBusy = errors.New("busy, try again")

// ErrPaymentPrecondition indicates that a charge, release or refund was called out of order.
var ErrPaymentPrecondition = errors.New("payment precondition failed")

// Payment precondition reasons carried by PaymentError.
var (
	ErrAlreadyPaid          = errors.New("already paid")
	ErrNotAssigned          = errors.New("task has no accepted rider")
	ErrTaskClosed           = errors.New("task is closed")
	ErrNothingToCharge      = errors.New("task amount is zero")
	ErrDeliveryNotDelivered = errors.New("delivery not marked delivered")
	ErrNoHeldFunds          = errors.New("no held funds")
	ErrTaskNotFailed        = errors.New("task has not failed")
)
