// Package payment holds the escrow gateway used to hold, release, refund and
// void task payments. The gateway is simulated: it moves no real money, it
// only keeps a ledger of holds. Every operation is idempotent per payment
// reference.
package payment

import (
	"context"
	"errors"
	"fmt"

	"dorm-delivery/internal/domain"
)

var (
	// ErrUnavailable is a transient gateway failure; callers may retry.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrUnknownReference means no hold exists under the reference.
	ErrUnknownReference = errors.New("unknown payment reference")
	// ErrReferenceMismatch means the reference is already used for a different hold.
	ErrReferenceMismatch = errors.New("payment reference reused with different terms")
	// ErrInvalidState means the hold cannot move to the requested state.
	ErrInvalidState = errors.New("payment in wrong state")
)

// State of a hold at the gateway.
type State string

// List of hold states
const (
	StateHeld     State = "held"
	StateReleased State = "released"
	StateRefunded State = "refunded"
	StateVoided   State = "voided"
)

// Hold is a gateway-side record of a charge.
type Hold struct {
	Reference string
	TaskID    int64
	Amount    domain.Money
	State     State
}

// FaultFunc may fail an operation before it is applied; op is hold, release, refund or void.
type FaultFunc func(op, reference string) error

// SimulatedGateway applies hold operations to a Ledger.
type SimulatedGateway struct {
	ledger Ledger
	fault  FaultFunc
}

// NewSimulatedGateway creates a gateway over a fresh MemoryLedger. fault may be nil.
func NewSimulatedGateway(fault FaultFunc) *SimulatedGateway {
	return NewLedgerGateway(NewMemoryLedger(), fault)
}

// NewLedgerGateway creates a gateway over ledger. fault may be nil.
func NewLedgerGateway(ledger Ledger, fault FaultFunc) *SimulatedGateway {
	return &SimulatedGateway{ledger: ledger, fault: fault}
}

// Hold reserves amount for taskID under reference. Repeating the same hold is a no-op.
func (g *SimulatedGateway) Hold(ctx context.Context, reference string, taskID int64, amount domain.Money) error {
	if err := g.check(ctx, "hold", reference); err != nil {
		return err
	}
	h, inserted, err := g.ledger.Insert(ctx, Hold{Reference: reference, TaskID: taskID, Amount: amount, State: StateHeld})
	if err != nil {
		return fmt.Errorf("hold %s: %w", reference, err)
	}
	if !inserted && (h.TaskID != taskID || h.Amount != amount || h.State != StateHeld) {
		return fmt.Errorf("hold %s: %w", reference, ErrReferenceMismatch)
	}
	return nil
}

// Release pays a held amount out to the rider.
func (g *SimulatedGateway) Release(ctx context.Context, reference string) error {
	return g.settle(ctx, "release", reference, StateReleased)
}

// Refund returns a held amount to the customer.
func (g *SimulatedGateway) Refund(ctx context.Context, reference string) error {
	return g.settle(ctx, "refund", reference, StateRefunded)
}

// Void cancels a hold that was never committed. Unknown references are ignored.
func (g *SimulatedGateway) Void(ctx context.Context, reference string) error {
	return g.settle(ctx, "void", reference, StateVoided)
}

// Lookup returns the hold stored under reference.
func (g *SimulatedGateway) Lookup(reference string) (Hold, bool) {
	h, ok, err := g.ledger.Get(context.Background(), reference)
	return h, ok && err == nil
}

// settle moves a held reference to to. Holds only ever leave StateHeld, so a
// lost Move is followed by at most one more read.
func (g *SimulatedGateway) settle(ctx context.Context, op, reference string, to State) error {
	if err := g.check(ctx, op, reference); err != nil {
		return err
	}
	for {
		h, ok, err := g.ledger.Get(ctx, reference)
		if err != nil {
			return fmt.Errorf("%s %s: %w", op, reference, err)
		}
		if !ok {
			if to == StateVoided {
				return nil
			}
			return fmt.Errorf("%s %s: %w", op, reference, ErrUnknownReference)
		}
		switch h.State {
		case to:
			return nil
		case StateHeld:
		default:
			return fmt.Errorf("%s %s in state %s: %w", op, reference, h.State, ErrInvalidState)
		}

		moved, err := g.ledger.Move(ctx, reference, StateHeld, to)
		if err != nil {
			return fmt.Errorf("%s %s: %w", op, reference, err)
		}
		if moved {
			return nil
		}
	}
}

// check runs the context and fault hook before an operation.
func (g *SimulatedGateway) check(ctx context.Context, op, reference string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.fault != nil {
		if err := g.fault(op, reference); err != nil {
			return fmt.Errorf("%s %s: %w", op, reference, err)
		}
	}
	return nil
}
