package domain

import (
	"testing"
	"time"
)

func TestSession_IsLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	closed := now.Add(-time.Minute)
	testCases := []struct {
		name string
		s    Session
		want bool
	}{
		{"open and unexpired", Session{ExpiresAt: now.Add(time.Hour)}, true},
		{"expires exactly now", Session{ExpiresAt: now}, true},
		{"expired", Session{ExpiresAt: now.Add(-time.Second)}, false},
		{"revoked", Session{Revoked: true, ExpiresAt: now.Add(time.Hour)}, false},
		{"closed", Session{ClosedAt: &closed, ExpiresAt: now.Add(time.Hour)}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.s.IsLive(now); got != tc.want {
				t.Errorf("IsLive = %v, want %v", got, tc.want)
			}
		})
	}
}
