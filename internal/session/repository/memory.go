package repository

import (
	"context"
	"sync"
	"time"

	"credential-lifecycle/internal/session/domain"
)

// MemoryRepository is an in-memory Repository. A single mutex serializes writers, which
// gives the same per-user ordering as the Postgres advisory lock.
type MemoryRepository struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	rotations map[string][]domain.RotationRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions:  make(map[string]*domain.Session),
		rotations: make(map[string][]domain.RotationRecord),
	}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSession(r.sessions[id]), nil
}

func (r *MemoryRepository) ReplaceActive(ctx context.Context, s *domain.Session, at time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revoked []string
	for id, existing := range r.sessions {
		if existing.UserID != s.UserID || !existing.Active() {
			continue
		}
		closeSession(existing, at)
		revoked = append(revoked, id)
	}
	r.sessions[s.ID] = cloneSession(s)
	return revoked, nil
}

func (r *MemoryRepository) UpdateLastActivity(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.LastActivityAt = at
	}
	return nil
}

func (r *MemoryRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		closeSession(s, at)
	}
	return nil
}

func (r *MemoryRepository) SetRefresh(ctx context.Context, id string, grant domain.RefreshGrant, counter int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !s.Active() {
		return ErrRotationConflict
	}
	g := grant
	s.Refresh = &g
	s.RotationCounter = counter
	return nil
}

func (r *MemoryRepository) RotateRefresh(ctx context.Context, rot Rotation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[rot.SessionID]
	if !ok || !s.Active() || s.Refresh == nil || s.Refresh.Hash != rot.ExpectedHash {
		return 0, ErrRotationConflict
	}
	r.rotations[rot.SessionID] = append(r.rotations[rot.SessionID], rot.Record)
	next := rot.Next
	s.Refresh = &next
	s.RotationCounter++
	s.LastActivityAt = rot.At
	return s.RotationCounter, nil
}

func (r *MemoryRepository) ListRotations(ctx context.Context, sessionID string) ([]domain.RotationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.rotations[sessionID]
	out := make([]domain.RotationRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (r *MemoryRepository) LatestRotation(ctx context.Context, sessionID string) (*domain.RotationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.rotations[sessionID]
	if len(recs) == 0 {
		return nil, nil
	}
	rec := recs[len(recs)-1]
	return &rec, nil
}

func closeSession(s *domain.Session, at time.Time) {
	s.Revoked = true
	if s.ClosedAt == nil {
		t := at
		s.ClosedAt = &t
	}
	s.Refresh = nil
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.ClosedAt != nil {
		t := *s.ClosedAt
		c.ClosedAt = &t
	}
	if s.Refresh != nil {
		g := *s.Refresh
		c.Refresh = &g
	}
	return &c
}
