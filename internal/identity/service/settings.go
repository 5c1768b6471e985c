package service

import "time"

// Settings is the immutable configuration of the authenticator and the components it wires.
// Zero durations and counts fall back to each component's default.
type Settings struct {
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	SessionLifetime    time.Duration
	RefreshGraceWindow time.Duration
	BcryptCost         int
	HashConcurrency    int
	LockoutThreshold   int
	LockoutWindow      time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Defaults for Settings fields left zero.
const (
	DefaultAccessTTL  = 10 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

func (s Settings) withDefaults() Settings {
	if s.AccessTTL <= 0 {
		s.AccessTTL = DefaultAccessTTL
	}
	if s.RefreshTTL <= 0 {
		s.RefreshTTL = DefaultRefreshTTL
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}
