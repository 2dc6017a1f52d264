// Package lifecycle enforces the delivery status state machine:
//
//	pending -> accepted -> in_progress -> delivered -> completed
//	              |            |
//	              +-> failed <-+
//
// and who may move a task along it.
package lifecycle

import (
	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
)

// Action is a lifecycle command issued against a task.
type Action string

// List of lifecycle actions
const (
	ActionAccept        Action = "accept"
	ActionStart         Action = "start"
	ActionMarkDelivered Action = "mark-delivered"
	ActionFail          Action = "fail"
	ActionConfirm       Action = "confirm"
)

// party names the relation the caller must have to the task.
type party int

const (
	anyone party = iota
	assignee
	owner
)

type rule struct {
	from  []domain.TaskStatus
	role  domain.Role
	party party
	to    domain.TaskStatus
}

var rules = map[Action]rule{
	ActionAccept: {
		from: []domain.TaskStatus{domain.StatusPending},
		role: domain.RoleDelivery, party: anyone, to: domain.StatusAccepted,
	},
	ActionStart: {
		from: []domain.TaskStatus{domain.StatusAccepted},
		role: domain.RoleDelivery, party: assignee, to: domain.StatusInProgress,
	},
	ActionMarkDelivered: {
		from: []domain.TaskStatus{domain.StatusInProgress},
		role: domain.RoleDelivery, party: assignee, to: domain.StatusDelivered,
	},
	ActionFail: {
		from: []domain.TaskStatus{domain.StatusAccepted, domain.StatusInProgress},
		role: domain.RoleDelivery, party: assignee, to: domain.StatusFailed,
	},
	ActionConfirm: {
		from: []domain.TaskStatus{domain.StatusDelivered},
		role: domain.RoleCustomer, party: owner, to: domain.StatusCompleted,
	},
}

// Actions returns every known lifecycle action.
func Actions() []Action {
	return []Action{ActionAccept, ActionStart, ActionMarkDelivered, ActionFail, ActionConfirm}
}

// Allowed reports whether the table has a transition for action out of status,
// regardless of who asks.
func Allowed(status domain.TaskStatus, action Action) bool {
	r, ok := rules[action]
	return ok && r.allows(status)
}

// Apply returns t after caller performs action, or a *apperr.TransitionError.
// Checks run role, then state, then ownership. t itself is not modified.
func Apply(t domain.Task, caller domain.Caller, action Action) (domain.Task, error) {
	r, ok := rules[action]
	if !ok {
		return domain.Task{}, reject(t, action, nil)
	}
	if err := Authorize(caller, r.role); err != nil {
		return domain.Task{}, reject(t, action, err)
	}
	if !r.allows(t.Status) {
		// an accept that lost to another rider reports the winner, whatever the task became since
		if action == ActionAccept && t.AssignedTo != nil && !t.IsAssignedTo(caller.UserID) {
			return domain.Task{}, reject(t, action, apperr.ErrAlreadyAssigned)
		}
		return domain.Task{}, reject(t, action, nil)
	}
	switch r.party {
	case assignee:
		if !t.IsAssignedTo(caller.UserID) {
			return domain.Task{}, reject(t, action, apperr.ErrPermissionDenied)
		}
	case owner:
		if t.CustomerID != caller.UserID {
			return domain.Task{}, reject(t, action, apperr.ErrPermissionDenied)
		}
	}

	next := t
	next.Status = r.to
	if action == ActionAccept {
		if t.AssignedTo != nil {
			return domain.Task{}, reject(t, action, apperr.ErrAlreadyAssigned)
		}
		rider := caller.UserID
		next.AssignedTo = &rider
	}
	return next, nil
}

// Authorize is the single role gate for task commands. Admins pass only where
// admin is the required role; they do not drive deliveries on anyone's behalf.
func Authorize(caller domain.Caller, required domain.Role) error {
	if !caller.Role.Valid() || caller.Role != required {
		return apperr.ErrPermissionDenied
	}
	return nil
}

func (r rule) allows(status domain.TaskStatus) bool {
	for _, s := range r.from {
		if s == status {
			return true
		}
	}
	return false
}

func reject(t domain.Task, action Action, reason error) error {
	return &apperr.TransitionError{
		TaskID: t.ID,
		Action: string(action),
		Status: string(t.Status),
		Reason: reason,
	}
}
