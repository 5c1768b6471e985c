package domain

import "time"

// Session is one login of a user. A user has at most one active session.
type Session struct {
	ID              string
	UserID          string
	StartedAt       time.Time
	LastActivityAt  time.Time
	ClosedAt        *time.Time // nil while open
	Revoked         bool
	ExpiresAt       time.Time // absolute; never extended
	IPAddress       string
	UserAgent       string
	Refresh         *RefreshGrant // nil when no refresh token is outstanding
	RotationCounter int
	KeyID           string // reserved
}

// RefreshGrant is the hash and expiry of the single outstanding refresh secret.
type RefreshGrant struct {
	Hash      string
	ExpiresAt time.Time
}

// Active reports whether the session has been neither revoked nor closed.
func (s *Session) Active() bool {
	return !s.Revoked && s.ClosedAt == nil
}

// IsLive reports whether the session is active and not past its absolute expiry at now.
func (s *Session) IsLive(now time.Time) bool {
	return s.Active() && !now.After(s.ExpiresAt)
}

// RotationRecord is an append-only entry written each time a refresh secret is replaced.
type RotationRecord struct {
	ID           string
	SessionID    string
	PreviousHash string
	RotatedAt    time.Time
}
