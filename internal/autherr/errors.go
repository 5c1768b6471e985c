// Package autherr defines the error taxonomy shared by the credential and session components:
// ValidationError for malformed input, AuthenticationError for deterministic business outcomes,
// and InternalError for store or hashing failures that must stay opaque to callers.
package autherr

import (
	"errors"
	"fmt"
)

// Reason classifies an AuthenticationError.
type Reason string

const (
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonLocked             Reason = "locked"
	ReasonSessionNotActive   Reason = "session_not_active"
	ReasonInvalidRefresh     Reason = "invalid_refresh"
	ReasonExpiredRefresh     Reason = "expired_refresh"
)

// AuthenticationError is a business outcome of an auth operation. It is never retried automatically.
type AuthenticationError struct {
	Reason Reason
}

func (e *AuthenticationError) Error() string {
	switch e.Reason {
	case ReasonInvalidCredentials:
		return "invalid credentials"
	case ReasonLocked:
		return "account temporarily locked"
	case ReasonSessionNotActive:
		return "session not active"
	case ReasonInvalidRefresh:
		return "invalid refresh token"
	case ReasonExpiredRefresh:
		return "refresh token expired or session closed"
	default:
		return "authentication failed"
	}
}

// Is reports whether target is an AuthenticationError with the same reason,
// so errors.Is(err, ErrLocked) works for any wrapped AuthenticationError.
func (e *AuthenticationError) Is(target error) bool {
	t, ok := target.(*AuthenticationError)
	return ok && t.Reason == e.Reason
}

// Sentinel authentication errors; compare with errors.Is.
var (
	ErrInvalidCredentials = &AuthenticationError{Reason: ReasonInvalidCredentials}
	ErrLocked             = &AuthenticationError{Reason: ReasonLocked}
	ErrSessionNotActive   = &AuthenticationError{Reason: ReasonSessionNotActive}
	ErrInvalidRefresh     = &AuthenticationError{Reason: ReasonInvalidRefresh}
	ErrExpiredRefresh     = &AuthenticationError{Reason: ReasonExpiredRefresh}
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Invalid returns a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InternalError wraps a hashing backend or store failure. Error() is opaque; the cause is
// available through Unwrap for server-side logging only.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return "internal error"
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Detail returns op and cause for logs. Never send it to a client.
func (e *InternalError) Detail() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

// Internal wraps err as an InternalError for op. Returns nil when err is nil. Errors that are
// already classified (authentication, validation, internal) are returned unchanged.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsAuthentication(err) || IsValidation(err) {
		return err
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// IsAuthentication reports whether err is (or wraps) an AuthenticationError.
func IsAuthentication(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ReasonOf returns the reason of a wrapped AuthenticationError, or "" if err is not one.
func ReasonOf(err error) Reason {
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}
