package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"credential-lifecycle/internal/session/domain"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newSession(id, userID string) *domain.Session {
	return &domain.Session{ID: id, UserID: userID, StartedAt: t0, LastActivityAt: t0, ExpiresAt: t0.Add(8 * time.Hour)}
}

func TestMemoryRepository_ReplaceActive(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	if revoked, err := r.ReplaceActive(ctx, newSession("s1", "u1"), t0); err != nil || len(revoked) != 0 {
		t.Fatalf("first ReplaceActive = %v, %v", revoked, err)
	}
	if _, err := r.ReplaceActive(ctx, newSession("o1", "u2"), t0); err != nil {
		t.Fatal(err)
	}
	revoked, err := r.ReplaceActive(ctx, newSession("s2", "u1"), t0.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(revoked) != 1 || revoked[0] != "s1" {
		t.Fatalf("revoked = %v, want [s1]", revoked)
	}
	s1, _ := r.GetByID(ctx, "s1")
	if s1.Active() || s1.ClosedAt == nil || !s1.ClosedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("s1 should be revoked and closed, got %+v", s1)
	}
	if other, _ := r.GetByID(ctx, "o1"); !other.Active() {
		t.Error("another user's session must stay active")
	}
}

func TestMemoryRepository_RotateRefreshCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, _ = r.ReplaceActive(ctx, newSession("s1", "u1"), t0)
	if err := r.SetRefresh(ctx, "s1", domain.RefreshGrant{Hash: "h1", ExpiresAt: t0.Add(time.Hour)}, 1); err != nil {
		t.Fatal(err)
	}
	rot := Rotation{
		SessionID:    "s1",
		ExpectedHash: "h1",
		Next:         domain.RefreshGrant{Hash: "h2", ExpiresAt: t0.Add(2 * time.Hour)},
		Record:       domain.RotationRecord{ID: "r1", SessionID: "s1", PreviousHash: "h1", RotatedAt: t0},
		At:           t0,
	}
	counter, err := r.RotateRefresh(ctx, rot)
	if err != nil || counter != 2 {
		t.Fatalf("RotateRefresh = %d, %v", counter, err)
	}
	rot.Record.ID = "r2"
	if _, err := r.RotateRefresh(ctx, rot); !errors.Is(err, ErrRotationConflict) {
		t.Fatalf("stale hash: want ErrRotationConflict, got %v", err)
	}
	recs, _ := r.ListRotations(ctx, "s1")
	if len(recs) != 1 || recs[0].PreviousHash != "h1" {
		t.Errorf("history = %+v, want single record for h1", recs)
	}
}

func TestMemoryRepository_RevokeIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, _ = r.ReplaceActive(ctx, newSession("s1", "u1"), t0)
	_ = r.Revoke(ctx, "s1", t0.Add(time.Minute))
	_ = r.Revoke(ctx, "s1", t0.Add(time.Hour))
	s, _ := r.GetByID(ctx, "s1")
	if !s.ClosedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("closed_at moved on second revoke: %v", s.ClosedAt)
	}
	if err := r.Revoke(ctx, "missing", t0); err != nil {
		t.Errorf("Revoke(missing) = %v", err)
	}
	if err := r.SetRefresh(ctx, "s1", domain.RefreshGrant{Hash: "h"}, 1); !errors.Is(err, ErrRotationConflict) {
		t.Errorf("SetRefresh on revoked session = %v", err)
	}
}
