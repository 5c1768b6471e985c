package security

import (
	"bytes"
	"errors"
	"os"
	"strings"
)

// ErrInvalidKey is returned when the signing key is empty or cannot be read.
var ErrInvalidKey = errors.New("invalid key")

// LoadKey returns the HMAC signing key described by s. When s names an existing file the
// file content (trimmed) is the key; otherwise s itself is the key.
func LoadKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if fi, err := os.Stat(s); err == nil && fi.Mode().IsRegular() {
		b, err := os.ReadFile(s)
		if err != nil {
			return nil, err
		}
		b = bytes.TrimSpace(b)
		if len(b) == 0 {
			return nil, ErrInvalidKey
		}
		return b, nil
	}
	return []byte(s), nil
}
