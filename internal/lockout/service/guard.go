package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"credential-lifecycle/internal/autherr"
	"credential-lifecycle/internal/lockout/domain"
	"credential-lifecycle/internal/lockout/repository"
)

const (
	DefaultThreshold = 4
	DefaultWindow    = 15 * time.Minute
)

// Guard counts failed logins per user and locks the account for Window once Threshold
// consecutive failures are reached. The counter only resets on a successful login or an
// explicit unlock; it does not decay with time.
type Guard struct {
	repo      repository.Repository
	threshold int
	window    time.Duration
}

// NewGuard returns a Guard. Non-positive threshold or window fall back to the defaults.
func NewGuard(repo repository.Repository, threshold int, window time.Duration) *Guard {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{repo: repo, threshold: threshold, window: window}
}

// EnsureRow creates the user's zeroed state if it does not exist yet.
func (g *Guard) EnsureRow(ctx context.Context, userID string, now time.Time) error {
	if err := g.repo.Ensure(ctx, userID, now.UTC()); err != nil {
		return autherr.Internal("lockout.ensure", err)
	}
	return nil
}

// IsBlocked reports whether the user is locked out at now.
func (g *Guard) IsBlocked(ctx context.Context, userID string, now time.Time) (bool, error) {
	st, err := g.repo.Get(ctx, userID)
	if err != nil {
		return false, autherr.Internal("lockout.check", err)
	}
	return st.Blocked(now), nil
}

// RecordFailure counts a failed attempt. Reaching the threshold sets locked_until and
// appends a lock event in the same transaction. Returns the updated state.
func (g *Guard) RecordFailure(ctx context.Context, userID string, now time.Time) (*domain.State, error) {
	now = now.UTC()
	st, err := g.repo.Mutate(ctx, userID, now, func(st *domain.State) (*domain.Event, error) {
		st.FailedCount++
		st.LastAttemptAt = &now
		if st.FailedCount < g.threshold {
			return nil, nil
		}
		until := now.Truncate(time.Second).Add(g.window)
		st.LockedUntil = &until
		return g.event(userID, domain.EventLock, fmt.Sprintf("%d failed attempts", g.threshold), "", now), nil
	})
	if err != nil {
		return nil, autherr.Internal("lockout.failure", err)
	}
	return st, nil
}

// RecordSuccess clears the counter and any lock after a successful login.
func (g *Guard) RecordSuccess(ctx context.Context, userID string, now time.Time) error {
	now = now.UTC()
	_, err := g.repo.Mutate(ctx, userID, now, func(st *domain.State) (*domain.Event, error) {
		st.FailedCount = 0
		st.LockedUntil = nil
		st.LastAttemptAt = &now
		return g.event(userID, domain.EventUnlock, "successful login", "", now), nil
	})
	if err != nil {
		return autherr.Internal("lockout.success", err)
	}
	return nil
}

// Unlock clears the user's lock on behalf of actorID. The event is a self_unlock when the
// actor is the user.
func (g *Guard) Unlock(ctx context.Context, userID, actorID, reason string, now time.Time) error {
	if userID == "" {
		return autherr.Invalid("user_id", "is required")
	}
	if actorID == "" {
		return autherr.Invalid("actor_id", "is required")
	}
	now = now.UTC()
	kind, defaultReason := domain.EventUnlock, "administrative unlock"
	if actorID == userID {
		kind, defaultReason = domain.EventSelfUnlock, "self unlock"
	}
	if reason == "" {
		reason = defaultReason
	}
	_, err := g.repo.Mutate(ctx, userID, now, func(st *domain.State) (*domain.Event, error) {
		st.FailedCount = 0
		st.LockedUntil = nil
		return g.event(userID, kind, reason, actorID, now), nil
	})
	if err != nil {
		return autherr.Internal("lockout.unlock", err)
	}
	return nil
}

// State returns the user's lockout state, or nil if none was recorded.
func (g *Guard) State(ctx context.Context, userID string) (*domain.State, error) {
	st, err := g.repo.Get(ctx, userID)
	if err != nil {
		return nil, autherr.Internal("lockout.state", err)
	}
	return st, nil
}

// Events returns the user's lock and unlock history, oldest first.
func (g *Guard) Events(ctx context.Context, userID string) ([]domain.Event, error) {
	evs, err := g.repo.ListEvents(ctx, userID)
	if err != nil {
		return nil, autherr.Internal("lockout.events", err)
	}
	return evs, nil
}

func (g *Guard) event(userID string, kind domain.EventKind, reason, actorID string, at time.Time) *domain.Event {
	if len(reason) > 200 {
		reason = reason[:200]
	}
	return &domain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Reason:    reason,
		ActorID:   actorID,
		CreatedAt: at,
	}
}
