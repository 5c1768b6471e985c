package repository

import (
	"context"
	"time"

	"credential-lifecycle/internal/lockout/domain"
)

// MutateFunc changes st in place and returns the event to append, or nil for none.
type MutateFunc func(st *domain.State) (*domain.Event, error)

// Repository defines persistence for lockout state and events.
type Repository interface {
	// Ensure inserts a zeroed state for the user if none exists.
	Ensure(ctx context.Context, userID string, at time.Time) error
	Get(ctx context.Context, userID string) (*domain.State, error)
	// Mutate applies fn to the user's state under a row lock and stores the result and the
	// returned event in one transaction. The row is created first when absent.
	Mutate(ctx context.Context, userID string, at time.Time, fn MutateFunc) (*domain.State, error)
	ListEvents(ctx context.Context, userID string) ([]domain.Event, error)
}
