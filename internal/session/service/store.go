package service

import (
	"context"
	"strings"
	"time"

	"credential-lifecycle/internal/autherr"
	"credential-lifecycle/internal/session/domain"
	"credential-lifecycle/internal/session/repository"
)

// DefaultLifetime is the absolute session lifetime when none is configured.
const DefaultLifetime = 8 * time.Hour

// Store creates and ends sessions, keeping at most one active session per user.
type Store struct {
	repo     repository.Repository
	lifetime time.Duration
	now      func() time.Time
}

// NewStore returns a Store. lifetime <= 0 means DefaultLifetime; a nil now means time.Now.
func NewStore(repo repository.Repository, lifetime time.Duration, now func() time.Time) *Store {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	if now == nil {
		now = time.Now
	}
	return &Store{repo: repo, lifetime: lifetime, now: now}
}

// Create starts a new session for the user, revoking any session that is still active.
// Returns the new session and the ids of the sessions it superseded.
func (s *Store) Create(ctx context.Context, userID, ip, userAgent string) (*domain.Session, []string, error) {
	if userID == "" {
		return nil, nil, autherr.Invalid("user_id", "is required")
	}
	now := s.now().UTC()
	id, err := NewSessionID(now)
	if err != nil {
		return nil, nil, autherr.Internal("session.create", err)
	}
	sess := &domain.Session{
		ID:             id,
		UserID:         userID,
		StartedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.lifetime),
		IPAddress:      truncate(ip, 45),
		UserAgent:      truncate(userAgent, 255),
	}
	superseded, err := s.repo.ReplaceActive(ctx, sess, now)
	if err != nil {
		return nil, nil, autherr.Internal("session.create", err)
	}
	return sess, superseded, nil
}

// Get returns the session, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherr.Internal("session.get", err)
	}
	return sess, nil
}

// Touch records activity on the session. It never extends the absolute expiry.
func (s *Store) Touch(ctx context.Context, sess *domain.Session, now time.Time) error {
	now = now.UTC()
	if err := s.repo.UpdateLastActivity(ctx, sess.ID, now); err != nil {
		return autherr.Internal("session.touch", err)
	}
	sess.LastActivityAt = now
	return nil
}

// Revoke ends the session. Revoking a missing or already ended session succeeds.
func (s *Store) Revoke(ctx context.Context, id string) error {
	if err := s.repo.Revoke(ctx, id, s.now().UTC()); err != nil {
		return autherr.Internal("session.revoke", err)
	}
	return nil
}

// IsLive reports whether sess is active and unexpired at now.
func (s *Store) IsLive(sess *domain.Session, now time.Time) bool {
	return sess != nil && sess.IsLive(now)
}

func truncate(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return strings.ToValidUTF8(v[:n], "")
}
