// Package memory is an in-process task and user store with the same
// conditional-update semantics as the Postgres repository.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dorm-delivery/internal/apperr"
	"dorm-delivery/internal/domain"
)

// Store keeps tasks and users in maps guarded by a single mutex.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	tasks  map[int64]domain.Task
	users  map[int64]domain.User
	refs   map[string]int64
	nextID struct{ task, user int64 }
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:   time.Now,
		tasks: make(map[int64]domain.Task),
		users: make(map[int64]domain.User),
		refs:  make(map[string]int64),
	}
}

// Create inserts a pending, unpaid task owned by customerID.
func (s *Store) Create(_ context.Context, customerID int64, in domain.NewTask) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[customerID]; !ok {
		return domain.Task{}, fmt.Errorf("create task: customer %d: %w", customerID, apperr.ErrNotFound)
	}

	s.nextID.task++
	now := s.now().UTC()
	t := domain.Task{
		ID:              s.nextID.task,
		Title:           in.Title,
		Description:     in.Description,
		Type:            in.Type,
		PickupLocation:  in.PickupLocation,
		DropoffLocation: in.DropoffLocation,
		Amount:          in.Amount,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentUnpaid,
		CustomerID:      customerID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	s.tasks[t.ID] = t
	return copyTask(t), nil
}

// Get returns the task with id, or nil if there is none.
func (s *Store) Get(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	t = copyTask(t)
	return &t, nil
}

// List returns tasks matching f ordered by id.
func (s *Store) List(_ context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Task, 0)
	for _, t := range s.tasks {
		if matches(t, f) {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces the stored task with next if it still has the expected revision.
func (s *Store) Update(_ context.Context, next domain.Task, expected domain.Revision) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[next.ID]
	if !ok {
		return domain.Task{}, fmt.Errorf("update task %d: %w", next.ID, apperr.ErrNotFound)
	}
	if cur.Status != expected.Status || cur.Version != expected.Version {
		return domain.Task{}, fmt.Errorf("update task %d at version %d: %w", next.ID, expected.Version, apperr.ErrConflict)
	}
	if ref := next.PaymentReference; ref != "" {
		if owner, taken := s.refs[ref]; taken && owner != next.ID {
			return domain.Task{}, fmt.Errorf("update task %d: payment reference reused: %w", next.ID, apperr.ErrConflict)
		}
	}

	upd := cur
	upd.Status = next.Status
	upd.PaymentStatus = next.PaymentStatus
	upd.HeldAmount = next.HeldAmount
	upd.PaymentReference = next.PaymentReference
	upd.AssignedTo = copyID(next.AssignedTo)
	upd.UpdatedAt = s.now().UTC()
	upd.Version = cur.Version + 1

	if upd.PaymentReference != "" {
		s.refs[upd.PaymentReference] = upd.ID
	}
	s.tasks[upd.ID] = upd
	return copyTask(upd), nil
}

// Stats aggregates task counts for the admin report.
func (s *Store) Stats(_ context.Context) (domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.Stats{Users: int64(len(s.users)), Total: int64(len(s.tasks))}
	for _, t := range s.tasks {
		switch {
		case t.Status == domain.StatusPending:
			st.Pending++
		case t.Status.Active():
			st.Active++
		}
		if t.Status == domain.StatusInProgress {
			st.InProgress++
		}
		if t.PaymentStatus == domain.PaymentHeld {
			st.HeldPayments++
			st.HeldAmount += t.HeldAmount
		}
	}
	return st, nil
}

// Users returns the user directory view of the store.
func (s *Store) Users() *Users { return &Users{s: s} }

// Users is the user side of a Store.
type Users struct{ s *Store }

// Get returns the user with id, or nil if there is none.
func (u *Users) Get(_ context.Context, id int64) (*domain.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	usr, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &usr, nil
}

// Create registers usr and returns its ID. Emails are unique.
func (u *Users) Create(_ context.Context, usr *domain.User) (int64, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Email == usr.Email {
			return 0, apperr.ErrConflict
		}
	}
	u.s.nextID.user++
	stored := *usr
	stored.ID = u.s.nextID.user
	u.s.users[stored.ID] = stored
	return stored.ID, nil
}

func matches(t domain.Task, f domain.TaskFilter) bool {
	if f.CustomerID != nil && t.CustomerID != *f.CustomerID {
		return false
	}
	if f.AssignedTo != nil && !t.IsAssignedTo(*f.AssignedTo) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.PaymentStatus != nil && t.PaymentStatus != *f.PaymentStatus {
		return false
	}
	return true
}

func copyTask(t domain.Task) domain.Task {
	t.AssignedTo = copyID(t.AssignedTo)
	return t
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
