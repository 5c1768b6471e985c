package domain

import "time"

// State is the failed-login counter of one user.
type State struct {
	UserID        string
	FailedCount   int
	LockedUntil   *time.Time
	LastAttemptAt *time.Time
	UpdatedAt     time.Time
}

// Blocked reports whether the user is locked out at now.
func (s *State) Blocked(now time.Time) bool {
	return s != nil && s.LockedUntil != nil && s.LockedUntil.After(now)
}

type EventKind string

const (
	EventLock       EventKind = "lock"
	EventUnlock     EventKind = "unlock"
	EventSelfUnlock EventKind = "self_unlock"
)

// Event is an append-only record of a lock or unlock.
type Event struct {
	ID        string
	UserID    string
	Kind      EventKind
	Reason    string
	ActorID   string // empty when the system acted
	CreatedAt time.Time
}
