package security

import "time"

// Test signing key for unit tests only. Do not use in production.
const testSigningKey = "test-signing-key-0123456789abcdef0123456789"

// NewTestTokenProvider returns a TokenProvider using the embedded test key.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider() *TokenProvider {
	p, err := NewTokenProvider([]byte(testSigningKey))
	if err != nil {
		panic(err)
	}
	return p
}

// WithClock returns a copy of p that reads the current time from now. Used by tests that
// need deterministic iat/exp.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	cp := *p
	cp.now = now
	return &cp
}
