package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, badly signed, or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakKey is returned when the signing key is shorter than MinKeyLength.
	ErrWeakKey = errors.New("signing key too short")
)

// MinKeyLength is the minimum HMAC-SHA256 key length in bytes.
const MinKeyLength = 32

// AccessClaims holds the bearer token claims: sub (user id), sid (session id), iat, exp.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// TokenProvider issues and validates HS256 access tokens with a single symmetric key.
// A valid token only proves it was issued here; callers must still check that the
// referenced session is live.
type TokenProvider struct {
	key []byte
	now func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with key. The key must be at least
// MinKeyLength bytes.
func NewTokenProvider(key []byte) (*TokenProvider, error) {
	if len(key) < MinKeyLength {
		return nil, ErrWeakKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &TokenProvider{key: k, now: time.Now}, nil
}

// IssueAccess mints an access token for the user and session valid for ttl.
// Returns the token and its expiration time.
func (p *TokenProvider) IssueAccess(userID, sessionID string, ttl time.Duration) (token string, expiresAt time.Time, err error) {
	now := p.now().UTC().Truncate(time.Second)
	expiresAt = now.Add(ttl)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateAccess parses and validates the access token (HS256 signature, exp).
// Returns sessionID and userID, or ErrInvalidToken.
func (p *TokenProvider) ValidateAccess(tokenString string) (sessionID, userID string, err error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.SessionID, claims.Subject, nil
}
