// Package tasks runs every task use case as a read-decide-write cycle over
// the lifecycle engine, the escrow ledger and the task repository.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/logx"
	"dorm-delivery/internal/service/escrow"
	"dorm-delivery/internal/service/lifecycle"
)

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 3 * time.Second
	voidTimeout        = 2 * time.Second
)

// Config tunes the coordinator.
type Config struct {
	// MaxAttempts bounds read-decide-write cycles per call when updates conflict.
	MaxAttempts int
	Timeout     time.Duration
}

// Metrics are optional counters; nil vectors are skipped.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Conflicts   *prometheus.CounterVec
}

// Coordinator is the entry point for all task use cases.
type Coordinator struct {
	tasks   TaskRepository
	users   UserDirectory
	gateway PaymentGateway
	events  EventPublisher
	logger  logx.Logger
	metrics Metrics

	maxAttempts      int
	operationTimeout time.Duration
	now              func() time.Time
	newReference     func() string
}

// NewCoordinator creates a Coordinator. events may be nil.
func NewCoordinator(
	tasks TaskRepository,
	users UserDirectory,
	gateway PaymentGateway,
	events EventPublisher,
	logger logx.Logger,
	m Metrics,
	cfg Config,
) *Coordinator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Coordinator{
		tasks:            tasks,
		users:            users,
		gateway:          gateway,
		events:           events,
		logger:           logger,
		metrics:          m,
		maxAttempts:      cfg.MaxAttempts,
		operationTimeout: cfg.Timeout,
		now:              time.Now,
		newReference:     uuid.NewString,
	}
}

func (c *Coordinator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.operationTimeout)
}

// Identify resolves a user id to the caller identity used by every operation.
func (c *Coordinator) Identify(ctx context.Context, userID int64) (domain.Caller, error) {
	u, err := c.CurrentUser(ctx, userID)
	if err != nil {
		return domain.Caller{}, err
	}
	return domain.Caller{UserID: u.ID, Role: u.Role}, nil
}

// CurrentUser returns the account behind userID, without its password hash.
func (c *Coordinator) CurrentUser(ctx context.Context, userID int64) (domain.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if userID <= 0 {
		return domain.User{}, apperr.ErrUnauthenticated
	}
	u, err := c.users.Get(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("identify user %d: %w", userID, err)
	}
	if u == nil || !u.Role.Valid() {
		return domain.User{}, fmt.Errorf("user %d: %w", userID, apperr.ErrUnauthenticated)
	}
	out := *u
	out.PasswordHash = ""
	return out, nil
}

// CreateTask posts a new pending task owned by the calling customer.
func (c *Coordinator) CreateTask(ctx context.Context, caller domain.Caller, in domain.NewTask) (domain.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := lifecycle.Authorize(caller, domain.RoleCustomer); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	in, err := validateNewTask(in)
	if err != nil {
		return domain.Task{}, err
	}

	t, err := c.tasks.Create(ctx, caller.UserID, in)
	if err != nil {
		return domain.Task{}, err
	}
	c.committed(ctx, caller, "create", t)
	return t, nil
}

// AcceptTask assigns a pending task to the calling delivery user. Exactly one
// of several concurrent callers wins; the rest get apperr.ErrAlreadyAssigned.
func (c *Coordinator) AcceptTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	return c.transition(ctx, caller, id, lifecycle.ActionAccept)
}

// StartTask moves an accepted task to in_progress.
func (c *Coordinator) StartTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	return c.transition(ctx, caller, id, lifecycle.ActionStart)
}

// MarkDelivered records that the rider handed the goods over.
func (c *Coordinator) MarkDelivered(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	return c.transition(ctx, caller, id, lifecycle.ActionMarkDelivered)
}

// FailTask marks an active task failed. Held funds stay held until refunded.
func (c *Coordinator) FailTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	return c.transition(ctx, caller, id, lifecycle.ActionFail)
}

// ConfirmDelivery completes a delivered task and releases held funds in the same write.
func (c *Coordinator) ConfirmDelivery(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	return c.run(ctx, caller, id, step{
		op: string(lifecycle.ActionConfirm),
		decide: func(cur domain.Task) (domain.Task, error) {
			next, err := lifecycle.Apply(cur, caller, lifecycle.ActionConfirm)
			if err != nil {
				return domain.Task{}, err
			}
			next, _ = escrow.SettleOnConfirm(next)
			return next, nil
		},
		effect: func(ctx context.Context, cur, next domain.Task) error {
			if cur.PaymentStatus == domain.PaymentHeld && next.PaymentStatus == domain.PaymentReleased {
				return c.gateway.Release(ctx, next.PaymentReference)
			}
			return nil
		},
		abort: c.settledButNotCommitted(string(lifecycle.ActionConfirm), domain.PaymentReleased),
	})
}

// ChargeForTask holds the task amount at the gateway. One payment reference is
// used for every attempt of the call; a hold that is never committed is voided.
func (c *Coordinator) ChargeForTask(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	ref := c.newReference()
	return c.run(ctx, caller, id, step{
		op: string(escrow.OpCharge),
		decide: func(cur domain.Task) (domain.Task, error) {
			return escrow.Charge(cur, caller, ref)
		},
		effect: func(ctx context.Context, _, next domain.Task) error {
			return c.gateway.Hold(ctx, ref, next.ID, next.HeldAmount)
		},
		abort: func(ctx context.Context, taskID int64, _ *domain.Task) {
			if err := c.gateway.Void(ctx, ref); err != nil {
				c.logger.Error("void uncommitted hold failed",
					logx.TaskID(taskID),
					logx.String("reference", ref),
					logx.Err(err),
				)
			}
		},
	})
}

// ReleasePayment pays held funds out for a delivered task.
func (c *Coordinator) ReleasePayment(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	return c.run(ctx, caller, id, step{
		op: string(escrow.OpRelease),
		decide: func(cur domain.Task) (domain.Task, error) {
			return escrow.Release(cur, caller)
		},
		effect: func(ctx context.Context, _, next domain.Task) error {
			return c.gateway.Release(ctx, next.PaymentReference)
		},
		abort: c.settledButNotCommitted(string(escrow.OpRelease), domain.PaymentReleased),
	})
}

// RefundPayment returns held funds of a failed task to the customer.
func (c *Coordinator) RefundPayment(ctx context.Context, caller domain.Caller, id int64) (domain.Task, error) {
	return c.run(ctx, caller, id, step{
		op: string(escrow.OpRefund),
		decide: func(cur domain.Task) (domain.Task, error) {
			return escrow.Refund(cur, caller)
		},
		effect: func(ctx context.Context, cur, _ domain.Task) error {
			return c.gateway.Refund(ctx, cur.PaymentReference)
		},
		abort: c.settledButNotCommitted(string(escrow.OpRefund), domain.PaymentRefunded),
	})
}

func (c *Coordinator) transition(ctx context.Context, caller domain.Caller, id int64, action lifecycle.Action) (domain.Task, error) {
	return c.run(ctx, caller, id, step{
		op: string(action),
		decide: func(cur domain.Task) (domain.Task, error) {
			return lifecycle.Apply(cur, caller, action)
		},
	})
}

// step is one use case: decide computes the next state from the current one,
// effect performs the gateway call before the write, and abort runs when an
// effect was attempted but no write was committed. applied is the last next
// state whose effect succeeded, or nil.
type step struct {
	op     string
	decide func(cur domain.Task) (domain.Task, error)
	effect func(ctx context.Context, cur, next domain.Task) error
	abort  func(ctx context.Context, taskID int64, applied *domain.Task)
}

func (c *Coordinator) run(ctx context.Context, caller domain.Caller, id int64, s step) (_ domain.Task, err error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var (
		attempted bool
		applied   *domain.Task
	)
	defer func() {
		if err != nil && attempted && s.abort != nil {
			// the request context may already be gone
			actx, acancel := context.WithTimeout(context.WithoutCancel(ctx), voidTimeout)
			defer acancel()
			s.abort(actx, id, applied)
		}
	}()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		cur, err := c.load(ctx, id)
		if err != nil {
			return domain.Task{}, err
		}
		next, err := s.decide(cur)
		if err != nil {
			return domain.Task{}, err
		}
		if s.effect != nil {
			attempted = true
			if err := s.effect(ctx, cur, next); err != nil {
				return domain.Task{}, fmt.Errorf("%s task %d: payment gateway: %w", s.op, id, err)
			}
			applied = &next
		}

		saved, err := c.tasks.Update(ctx, next, cur.Revision())
		if err == nil {
			c.committed(ctx, caller, s.op, saved)
			return saved, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return domain.Task{}, err
		}

		if c.metrics.Conflicts != nil {
			c.metrics.Conflicts.WithLabelValues(s.op).Inc()
		}
		c.logger.Debug("task update conflict",
			logx.String("op", s.op),
			logx.TaskID(id),
			logx.Int("attempt", attempt),
		)
	}
	return domain.Task{}, fmt.Errorf("%s task %d after %d attempts: %w", s.op, id, c.maxAttempts, apperr.ErrBusy)
}

// settledButNotCommitted reports money moved at the gateway that the task row
// does not show. Nothing is reported when the effect never reached the
// gateway or a concurrent caller already committed the same settlement.
func (c *Coordinator) settledButNotCommitted(op string, target domain.PaymentStatus) func(context.Context, int64, *domain.Task) {
	return func(ctx context.Context, taskID int64, applied *domain.Task) {
		if applied == nil || applied.PaymentStatus != target {
			return
		}
		t, err := c.tasks.Get(ctx, taskID)
		if err == nil && t != nil && t.PaymentStatus == target {
			return
		}
		fields := []logx.Field{
			logx.String("op", op),
			logx.TaskID(taskID),
			logx.String("reference", applied.PaymentReference),
		}
		if err != nil {
			fields = append(fields, logx.Err(err))
		}
		c.logger.Error("gateway settled but task update not committed", fields...)
	}
}

func (c *Coordinator) load(ctx context.Context, id int64) (domain.Task, error) {
	if id <= 0 {
		return domain.Task{}, fmt.Errorf("task id %d: %w", id, apperr.ErrInvalid)
	}
	t, err := c.tasks.Get(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if t == nil {
		return domain.Task{}, fmt.Errorf("task %d: %w", id, apperr.ErrNotFound)
	}
	return *t, nil
}

// committed logs, counts and publishes a write that reached the repository.
func (c *Coordinator) committed(ctx context.Context, caller domain.Caller, op string, t domain.Task) {
	if c.metrics.Transitions != nil {
		c.metrics.Transitions.WithLabelValues(op).Inc()
	}
	c.logger.Info("task updated",
		logx.String("event", op),
		logx.TaskID(t.ID),
		logx.Int64("actor_id", caller.UserID),
		logx.String("status", string(t.Status)),
		logx.String("payment_status", string(t.PaymentStatus)),
	)
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, domain.NewTaskEvent(t, op, caller.UserID, c.now().UTC())); err != nil {
		c.logger.Warn("publish task event failed",
			logx.String("event", op),
			logx.TaskID(t.ID),
			logx.Err(err),
		)
	}
}

func validateNewTask(in domain.NewTask) (domain.NewTask, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.PickupLocation = strings.TrimSpace(in.PickupLocation)
	in.DropoffLocation = strings.TrimSpace(in.DropoffLocation)
	if in.Type == "" {
		in.Type = domain.TaskTypeParcel
	}
	switch {
	case in.Title == "":
		return domain.NewTask{}, fmt.Errorf("title is required: %w", apperr.ErrInvalid)
	case !in.Type.Valid():
		return domain.NewTask{}, fmt.Errorf("unknown task type %q: %w", in.Type, apperr.ErrInvalid)
	case in.Amount < 0:
		return domain.NewTask{}, fmt.Errorf("negative amount: %w", apperr.ErrInvalid)
	case in.Amount > domain.MaxAmount:
		return domain.NewTask{}, fmt.Errorf("amount over %s: %w", domain.MaxAmount, apperr.ErrInvalid)
	}
	return in, nil
}
