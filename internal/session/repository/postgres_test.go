package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"credential-lifecycle/internal/db/dbtest"
	"credential-lifecycle/internal/session/domain"
)

func newSessionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:26]
}

func liveSession(userID string, at time.Time) *domain.Session {
	return &domain.Session{
		ID:             newSessionID(),
		UserID:         userID,
		StartedAt:      at,
		LastActivityAt: at,
		ExpiresAt:      at.Add(time.Hour),
	}
}

func TestPostgresRepository_ReplaceActiveConcurrent(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewPostgresRepository(conn)
	ctx := context.Background()
	userID := dbtest.InsertUser(t, conn)
	at := time.Now().UTC().Truncate(time.Microsecond)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ReplaceActive(ctx, liveSession(userID, at), at); err != nil {
				t.Errorf("ReplaceActive: %v", err)
			}
		}()
	}
	wg.Wait()

	var live, total int
	err := conn.QueryRowContext(ctx, `SELECT
		count(*) FILTER (WHERE NOT revoked AND closed_at IS NULL), count(*)
		FROM sessions WHERE user_id = $1`, userID).Scan(&live, &total)
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if total != n || live != 1 {
		t.Errorf("sessions total=%d live=%d, want total=%d live=1", total, live, n)
	}
}

func TestPostgresRepository_RotateRefreshLoserRollsBack(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewPostgresRepository(conn)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Microsecond)
	sess := liveSession(dbtest.InsertUser(t, conn), at)
	if _, err := repo.ReplaceActive(ctx, sess, at); err != nil {
		t.Fatalf("ReplaceActive: %v", err)
	}
	if err := repo.SetRefresh(ctx, sess.ID, domain.RefreshGrant{Hash: "h0", ExpiresAt: at.Add(time.Hour)}, 0); err != nil {
		t.Fatalf("SetRefresh: %v", err)
	}

	rotate := func(next string) (int, error) {
		return repo.RotateRefresh(ctx, Rotation{
			SessionID:    sess.ID,
			ExpectedHash: "h0",
			Next:         domain.RefreshGrant{Hash: next, ExpiresAt: at.Add(time.Hour)},
			Record:       domain.RotationRecord{ID: uuid.New().String(), SessionID: sess.ID, PreviousHash: "h0", RotatedAt: at},
			At:           at,
		})
	}
	counter, err := rotate("h1")
	if err != nil || counter != 1 {
		t.Fatalf("first RotateRefresh = %d, %v; want 1, nil", counter, err)
	}
	if _, err := rotate("h2"); !errors.Is(err, ErrRotationConflict) {
		t.Fatalf("stale RotateRefresh = %v, want ErrRotationConflict", err)
	}

	recs, err := repo.ListRotations(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListRotations: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("rotation history has %d records, want 1", len(recs))
	}
	got, err := repo.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Refresh == nil || got.Refresh.Hash != "h1" || got.RotationCounter != 1 {
		t.Errorf("session after lost swap = %+v, want the winner's grant", got)
	}
}
