package payment

import (
	"context"
	"sync"
)

// Ledger stores holds. Both binaries must see the same ledger, so outside
// tests and single-process memory mode it is backed by Postgres.
type Ledger interface {
	// Insert stores h unless its reference exists; it returns the stored hold
	// and whether h was inserted.
	Insert(ctx context.Context, h Hold) (Hold, bool, error)
	// Get returns the hold under reference; ok is false when there is none.
	Get(ctx context.Context, reference string) (Hold, bool, error)
	// Move changes the state from -> to and reports whether the hold was in from.
	Move(ctx context.Context, reference string, from, to State) (bool, error)
}

// MemoryLedger is a Ledger for one process.
type MemoryLedger struct {
	mu    sync.Mutex
	holds map[string]Hold
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{holds: make(map[string]Hold)}
}

func (l *MemoryLedger) Insert(_ context.Context, h Hold) (Hold, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.holds[h.Reference]; ok {
		return cur, false, nil
	}
	l.holds[h.Reference] = h
	return h, true, nil
}

func (l *MemoryLedger) Get(_ context.Context, reference string) (Hold, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.holds[reference]
	return h, ok, nil
}

func (l *MemoryLedger) Move(_ context.Context, reference string, from, to State) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.holds[reference]
	if !ok || h.State != from {
		return false, nil
	}
	h.State = to
	l.holds[reference] = h
	return true, nil
}
