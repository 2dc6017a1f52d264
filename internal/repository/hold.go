package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/gateway/payment"
)

// HoldRepo is the gateway hold ledger kept next to delivery_tasks, so the
// service and the settlement worker settle the same holds.
type HoldRepo struct{ db *pgxpool.Pool }

// NewHoldRepo creates a new HoldRepo.
func NewHoldRepo(db *pgxpool.Pool) *HoldRepo { return &HoldRepo{db: db} }

var _ payment.Ledger = (*HoldRepo)(nil)

// Insert - stores h unless its reference exists, and returns the stored row.
func (r *HoldRepo) Insert(ctx context.Context, h payment.Hold) (payment.Hold, bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO payment_holds(reference, task_id, amount_cents, state) VALUES($1, $2, $3, $4)
		 ON CONFLICT (reference) DO NOTHING`,
		h.Reference, h.TaskID, int64(h.Amount), string(h.State))
	if err != nil {
		return payment.Hold{}, false, fmt.Errorf("insert hold %s: %w", h.Reference, err)
	}
	if tag.RowsAffected() == 1 {
		return h, true, nil
	}
	cur, ok, err := r.Get(ctx, h.Reference)
	if err != nil {
		return payment.Hold{}, false, err
	}
	if !ok {
		return payment.Hold{}, false, fmt.Errorf("insert hold %s: row vanished after conflict", h.Reference)
	}
	return cur, false, nil
}

// Get - returns the hold under reference; ok is false if there is none.
func (r *HoldRepo) Get(ctx context.Context, reference string) (payment.Hold, bool, error) {
	var (
		h      payment.Hold
		amount int64
		state  string
	)
	err := r.db.QueryRow(ctx,
		`SELECT reference, task_id, amount_cents, state FROM payment_holds WHERE reference = $1`, reference,
	).Scan(&h.Reference, &h.TaskID, &amount, &state)
	if err != nil {
		if IsNotFound(err) {
			return payment.Hold{}, false, nil
		}
		return payment.Hold{}, false, fmt.Errorf("get hold %s: %w", reference, err)
	}
	h.Amount = domain.Money(amount)
	h.State = payment.State(state)
	return h, true, nil
}

// Move - changes the hold state if it is currently from.
func (r *HoldRepo) Move(ctx context.Context, reference string, from, to payment.State) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE payment_holds SET state = $3, updated_at = now() WHERE reference = $1 AND state = $2`,
		reference, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("move hold %s: %w", reference, err)
	}
	return tag.RowsAffected() == 1, nil
}
