package domain

import "time"

// AccessLogEntry is one append-only record of an authentication attempt or session event.
// UserID is empty when the attempt did not resolve to a user.
type AccessLogEntry struct {
	ID             string
	UserID         string
	AttemptedEmail string
	CreatedAt      time.Time
	Success        bool
	IP             string
	Detail         string
}

// Detail values written by the authenticator.
const (
	DetailLogin             = "login"
	DetailLoginInvalid      = "login: invalid credentials"
	DetailLoginLocked       = "login: account locked"
	DetailLockoutTriggered  = "login: lockout triggered"
	DetailRefresh           = "refresh"
	DetailRefreshRejected   = "refresh: rejected"
	DetailLogout            = "logout"
	DetailRegister          = "register"
	DetailRegisterDuplicate = "register: duplicate email"
	DetailSessionSuperseded = "session superseded"
)
