package domain

import "time"

// Credential is the password hash owned by exactly one user.
type Credential struct {
	UserID       string
	PasswordHash string // bcrypt of the normalized password, never plaintext
	UpdatedAt    time.Time
}
