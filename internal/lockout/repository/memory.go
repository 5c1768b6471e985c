package repository

import (
	"context"
	"sync"
	"time"

	"credential-lifecycle/internal/lockout/domain"
)

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu     sync.Mutex
	states map[string]*domain.State
	events map[string][]domain.Event
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		states: make(map[string]*domain.State),
		events: make(map[string][]domain.Event),
	}
}

func (r *MemoryRepository) Ensure(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(userID, at)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	return cloneState(st), nil
}

func (r *MemoryRepository) Mutate(ctx context.Context, userID string, at time.Time, fn MutateFunc) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	work := cloneState(r.ensureLocked(userID, at))
	ev, err := fn(work)
	if err != nil {
		return nil, err
	}
	work.UpdatedAt = at
	r.states[userID] = work
	if ev != nil {
		r.events[userID] = append(r.events[userID], *ev)
	}
	return cloneState(work), nil
}

func (r *MemoryRepository) ListEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events[userID]))
	copy(out, r.events[userID])
	return out, nil
}

func (r *MemoryRepository) ensureLocked(userID string, at time.Time) *domain.State {
	st, ok := r.states[userID]
	if !ok {
		st = &domain.State{UserID: userID, UpdatedAt: at}
		r.states[userID] = st
	}
	return st
}

func cloneState(st *domain.State) *domain.State {
	c := *st
	if st.LockedUntil != nil {
		t := *st.LockedUntil
		c.LockedUntil = &t
	}
	if st.LastAttemptAt != nil {
		t := *st.LastAttemptAt
		c.LastAttemptAt = &t
	}
	return &c
}
