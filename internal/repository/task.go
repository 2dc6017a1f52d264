package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
)

const taskColumns = `id, title, description, task_type, pickup_location, dropoff_location,
       amount_cents, status, payment_status, held_amount_cents, COALESCE(payment_reference, ''),
       customer_id, assigned_to, created_at, updated_at, version`

// TaskRepo represents delivery task repository.
type TaskRepo struct{ db *pgxpool.Pool }

// NewTaskRepo creates a new TaskRepo.
func NewTaskRepo(db *pgxpool.Pool) *TaskRepo { return &TaskRepo{db: db} }

// Create - inserts a pending, unpaid task owned by customerID.
func (r *TaskRepo) Create(ctx context.Context, customerID int64, in domain.NewTask) (domain.Task, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO delivery_tasks
            (title, description, task_type, pickup_location, dropoff_location, amount_cents,
             status, payment_status, customer_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+taskColumns,
		in.Title, in.Description, string(in.Type), in.PickupLocation, in.DropoffLocation, int64(in.Amount),
		string(domain.StatusPending), string(domain.PaymentUnpaid), customerID)

	t, err := scanTask(row)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return domain.Task{}, fmt.Errorf("create task: customer %d: %w", customerID, apperr.ErrNotFound)
		}
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// Get - returns task by its ID, or nil if there is none.
func (r *TaskRepo) Get(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM delivery_tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return &t, nil
}

// List returns tasks matching f ordered by id.
func (r *TaskRepo) List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.CustomerID != nil {
		add("customer_id = $%d", *f.CustomerID)
	}
	if f.AssignedTo != nil {
		add("assigned_to = $%d", *f.AssignedTo)
	}
	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	if f.PaymentStatus != nil {
		add("payment_status = $%d", string(*f.PaymentStatus))
	}

	q := `SELECT ` + taskColumns + ` FROM delivery_tasks`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update writes next only if the stored row still has the expected status and version.
// It returns apperr.ErrConflict when the row moved on and apperr.ErrNotFound when it is gone.
func (r *TaskRepo) Update(ctx context.Context, next domain.Task, expected domain.Revision) (domain.Task, error) {
	var ref *string
	if next.PaymentReference != "" {
		ref = &next.PaymentReference
	}

	row := r.db.QueryRow(ctx, `
        UPDATE delivery_tasks
        SET status            = $4,
            payment_status    = $5,
            held_amount_cents = $6,
            payment_reference = $7,
            assigned_to       = $8,
            updated_at        = now(),
            version           = version + 1
        WHERE id = $1 AND status = $2 AND version = $3
        RETURNING `+taskColumns,
		next.ID, string(expected.Status), expected.Version,
		string(next.Status), string(next.PaymentStatus), int64(next.HeldAmount), ref, next.AssignedTo)

	t, err := scanTask(row)
	if err == nil {
		return t, nil
	}
	if !IsNotFound(err) {
		if IsDuplicate(err) {
			return domain.Task{}, fmt.Errorf("update task %d: payment reference reused: %w", next.ID, apperr.ErrConflict)
		}
		return domain.Task{}, fmt.Errorf("update task %d: %w", next.ID, err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM delivery_tasks WHERE id = $1)`, next.ID).Scan(&exists); err != nil {
		return domain.Task{}, fmt.Errorf("check task %d: %w", next.ID, err)
	}
	if !exists {
		return domain.Task{}, fmt.Errorf("update task %d: %w", next.ID, apperr.ErrNotFound)
	}
	return domain.Task{}, fmt.Errorf("update task %d at version %d: %w", next.ID, expected.Version, apperr.ErrConflict)
}

// Stats - aggregates task counts for the admin report.
func (r *TaskRepo) Stats(ctx context.Context) (domain.Stats, error) {
	var (
		s    domain.Stats
		held int64
	)
	err := r.db.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM users),
            COUNT(*),
            COUNT(*) FILTER (WHERE status IN ('accepted', 'in_progress', 'delivered')),
            COUNT(*) FILTER (WHERE status = 'pending'),
            COUNT(*) FILTER (WHERE status = 'in_progress'),
            COUNT(*) FILTER (WHERE payment_status = 'held'),
            COALESCE(SUM(held_amount_cents) FILTER (WHERE payment_status = 'held'), 0)
        FROM delivery_tasks
    `).Scan(&s.Users, &s.Total, &s.Active, &s.Pending, &s.InProgress, &s.HeldPayments, &held)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("task stats: %w", err)
	}
	s.HeldAmount = domain.Money(held)
	return s, nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var (
		t                           domain.Task
		taskType, status, payStatus string
		amount, held                int64
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &taskType, &t.PickupLocation, &t.DropoffLocation,
		&amount, &status, &payStatus, &held, &t.PaymentReference,
		&t.CustomerID, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if err != nil {
		return domain.Task{}, err
	}
	t.Type = domain.TaskType(taskType)
	t.Status = domain.TaskStatus(status)
	t.PaymentStatus = domain.PaymentStatus(payStatus)
	t.Amount = domain.Money(amount)
	t.HeldAmount = domain.Money(held)
	return t, nil
}
