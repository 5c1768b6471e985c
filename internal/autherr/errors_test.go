package autherr

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthenticationError_IsMatchesReason(t *testing.T) {
	err := fmt.Errorf("login: %w", &AuthenticationError{Reason: ReasonLocked})
	if !errors.Is(err, ErrLocked) {
		t.Error("wrapped locked error should match ErrLocked")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("locked error must not match ErrInvalidCredentials")
	}
	if got := ReasonOf(err); got != ReasonLocked {
		t.Errorf("ReasonOf = %q, want %q", got, ReasonLocked)
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("session.create", cause)
	var ie *InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("Internal should return *InternalError, got %T", err)
	}
	if err.Error() != "internal error" {
		t.Errorf("Error() = %q, must be opaque", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("InternalError should unwrap to cause")
	}
	if ie.Detail() != "session.create: connection refused" {
		t.Errorf("Detail() = %q", ie.Detail())
	}
}

func TestInternal_PassThrough(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"authentication", ErrInvalidRefresh},
		{"validation", Invalid("email", "required")},
		{"already internal", &InternalError{Op: "x", Err: errors.New("y")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Internal("op", tc.err)
			if got != tc.err {
				t.Errorf("Internal(%v) = %v, want unchanged", tc.err, got)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := Invalid("email", "is required")
	if err.Error() != "validation: email: is required" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsValidation(err) {
		t.Error("IsValidation should be true")
	}
	if IsAuthentication(err) {
		t.Error("IsAuthentication should be false")
	}
}
