package service

import (
	"context"
	"testing"
	"time"

	"credential-lifecycle/internal/autherr"
	"credential-lifecycle/internal/lockout/domain"
	"credential-lifecycle/internal/lockout/repository"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 500_000_000, time.UTC)

func TestGuard_LocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(repository.NewMemoryRepository(), 0, 0)
	for i := 1; i <= 3; i++ {
		st, err := g.RecordFailure(ctx, "u1", t0)
		if err != nil {
			t.Fatal(err)
		}
		if st.FailedCount != i || st.Blocked(t0) {
			t.Fatalf("after %d failures: %+v", i, st)
		}
	}
	st, err := g.RecordFailure(ctx, "u1", t0)
	if err != nil {
		t.Fatal(err)
	}
	want := t0.Truncate(time.Second).Add(DefaultWindow)
	if st.LockedUntil == nil || !st.LockedUntil.Equal(want) {
		t.Fatalf("LockedUntil = %v, want %v", st.LockedUntil, want)
	}
	blocked, _ := g.IsBlocked(ctx, "u1", t0)
	if !blocked {
		t.Error("user should be blocked right after the fourth failure")
	}
	if blocked, _ := g.IsBlocked(ctx, "u1", want); blocked {
		t.Error("lock should end at locked_until")
	}
	evs, _ := g.Events(ctx, "u1")
	if len(evs) != 1 || evs[0].Kind != domain.EventLock || evs[0].Reason != "4 failed attempts" {
		t.Errorf("events = %+v", evs)
	}
}

func TestGuard_CounterDoesNotDecay(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(repository.NewMemoryRepository(), 4, time.Minute)
	for i := 0; i < 4; i++ {
		_, _ = g.RecordFailure(ctx, "u1", t0)
	}
	later := t0.Add(24 * time.Hour)
	if blocked, _ := g.IsBlocked(ctx, "u1", later); blocked {
		t.Fatal("lock should have expired")
	}
	st, _ := g.RecordFailure(ctx, "u1", later)
	if st.FailedCount != 5 || !st.Blocked(later) {
		t.Errorf("a failure after an expired lock should lock again, got %+v", st)
	}
}

func TestGuard_RecordSuccessResets(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(repository.NewMemoryRepository(), 0, 0)
	for i := 0; i < 4; i++ {
		_, _ = g.RecordFailure(ctx, "u1", t0)
	}
	if err := g.RecordSuccess(ctx, "u1", t0); err != nil {
		t.Fatal(err)
	}
	st, _ := g.State(ctx, "u1")
	if st.FailedCount != 0 || st.LockedUntil != nil {
		t.Errorf("state after success = %+v", st)
	}
	evs, _ := g.Events(ctx, "u1")
	if len(evs) != 2 || evs[1].Kind != domain.EventUnlock {
		t.Errorf("events = %+v", evs)
	}
}

func TestGuard_Unlock(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name     string
		actor    string
		wantKind domain.EventKind
	}{
		{"administrator", "admin-1", domain.EventUnlock},
		{"the user", "u1", domain.EventSelfUnlock},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGuard(repository.NewMemoryRepository(), 0, 0)
			for i := 0; i < 4; i++ {
				_, _ = g.RecordFailure(ctx, "u1", t0)
			}
			if err := g.Unlock(ctx, "u1", tc.actor, "", t0); err != nil {
				t.Fatal(err)
			}
			if blocked, _ := g.IsBlocked(ctx, "u1", t0); blocked {
				t.Error("user still blocked after unlock")
			}
			evs, _ := g.Events(ctx, "u1")
			last := evs[len(evs)-1]
			if last.Kind != tc.wantKind || last.ActorID != tc.actor {
				t.Errorf("last event = %+v", last)
			}
		})
	}
	g := NewGuard(repository.NewMemoryRepository(), 0, 0)
	if err := g.Unlock(ctx, "u1", "", "", t0); !autherr.IsValidation(err) {
		t.Errorf("Unlock without actor = %v", err)
	}
}

func TestGuard_EnsureRow(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(repository.NewMemoryRepository(), 0, 0)
	if st, _ := g.State(ctx, "u1"); st != nil {
		t.Fatalf("state before EnsureRow = %+v", st)
	}
	for i := 0; i < 2; i++ {
		if err := g.EnsureRow(ctx, "u1", t0); err != nil {
			t.Fatal(err)
		}
	}
	st, _ := g.State(ctx, "u1")
	if st == nil || st.FailedCount != 0 {
		t.Errorf("state after EnsureRow = %+v", st)
	}
	if blocked, err := g.IsBlocked(ctx, "unknown", t0); blocked || err != nil {
		t.Errorf("IsBlocked(unknown) = %v, %v", blocked, err)
	}
}
