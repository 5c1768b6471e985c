package domain

import (
	"testing"
	"time"
)

func TestState_Blocked(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)
	testCases := []struct {
		name string
		s    *State
		want bool
	}{
		{"nil state", nil, false},
		{"never locked", &State{FailedCount: 2}, false},
		{"locked until later", &State{LockedUntil: &later}, true},
		{"lock ends exactly now", &State{LockedUntil: &now}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.s.Blocked(now); got != tc.want {
				t.Errorf("Blocked = %v, want %v", got, tc.want)
			}
		})
	}
}
