package repository

import (
	"context"
	"errors"
	"time"

	"credential-lifecycle/internal/session/domain"
)

// ErrRotationConflict is returned by RotateRefresh when the stored refresh hash no longer
// matches the expected one or the session is no longer active.
var ErrRotationConflict = errors.New("refresh rotation conflict")

// Rotation describes one compare-and-swap of a session's refresh grant.
type Rotation struct {
	SessionID    string
	ExpectedHash string
	Next         domain.RefreshGrant
	Record       domain.RotationRecord
	At           time.Time
}

// Repository defines persistence for sessions and their rotation history.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// ReplaceActive revokes every active session of s.UserID and inserts s, atomically and
	// serialized per user. Returns the ids of the revoked sessions.
	ReplaceActive(ctx context.Context, s *domain.Session, at time.Time) ([]string, error)
	UpdateLastActivity(ctx context.Context, id string, at time.Time) error
	Revoke(ctx context.Context, id string, at time.Time) error
	SetRefresh(ctx context.Context, id string, grant domain.RefreshGrant, counter int) error
	// RotateRefresh appends r.Record and swaps the refresh grant in one transaction.
	// Returns the new rotation counter, or ErrRotationConflict.
	RotateRefresh(ctx context.Context, r Rotation) (int, error)
	ListRotations(ctx context.Context, sessionID string) ([]domain.RotationRecord, error)
	LatestRotation(ctx context.Context, sessionID string) (*domain.RotationRecord, error)
}
