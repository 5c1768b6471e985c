package domain

import (
	"errors"
	"strings"
	"time"
)

// User is the account whose credential and sessions are managed here. Tenant records are
// owned elsewhere; only the reference is kept.
type User struct {
	ID            string
	TenantID      string
	GivenNames    string
	FamilyNames   string
	Email         string // lower-cased, unique
	Phone         string // optional
	Status        UserStatus
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
}

type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusLocked    UserStatus = "locked"
	UserStatusInactive  UserStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusSuspended, UserStatusLocked, UserStatusInactive:
		return true
	}
	return false
}

// CanAuthenticate reports whether a user in this status may log in or use a session.
func (s UserStatus) CanAuthenticate() bool {
	return s == UserStatusActive
}

// NormalizeEmail trims and lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.TenantID == "" {
		return errors.New("tenant is required")
	}
	if u.Status == "" {
		u.Status = UserStatusPending
	}
	if !u.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}
