package service

import (
	"regexp"

	"credential-lifecycle/internal/autherr"
)

var simpleEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// maxPasswordLen bounds passwords at Register and Login alike; the codec itself has no
// length limit.
const (
	minPasswordLen = 12
	maxPasswordLen = 4096
	maxEmailLen    = 160
)

func validateEmail(email string) error {
	if email == "" {
		return autherr.Invalid("email", "is required")
	}
	if len(email) > maxEmailLen || !simpleEmail.MatchString(email) {
		return autherr.Invalid("email", "invalid format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return autherr.Invalid("password", "must be at least 12 characters")
	}
	if len(password) > maxPasswordLen {
		return autherr.Invalid("password", "is too long")
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	switch {
	case !hasUpper:
		return autherr.Invalid("password", "must contain at least one uppercase letter")
	case !hasLower:
		return autherr.Invalid("password", "must contain at least one lowercase letter")
	case !hasNumber:
		return autherr.Invalid("password", "must contain at least one number")
	case !hasSymbol:
		return autherr.Invalid("password", "must contain at least one symbol")
	}
	return nil
}
