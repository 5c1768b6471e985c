package security

import (
	"crypto/sha256"
	"encoding/base64"
)

// Normalize returns base64(SHA-256(secret)), a fixed 44-byte string. Hashing the normalized
// form lets secrets of any length through bcrypt, which ignores input beyond 72 bytes.
// Passwords and refresh secrets go through the same normalization.
func Normalize(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(h[:])
}
