package security

import (
	"crypto/rand"
	"encoding/base64"
)

// refreshSecretBytes gives 384 bits of entropy; encoded as 64 base64url characters.
const refreshSecretBytes = 48

// NewRefreshSecret returns a random base64url (unpadded) refresh secret.
func NewRefreshSecret() (string, error) {
	return RandomToken(refreshSecretBytes)
}

// RandomToken returns n random bytes encoded as unpadded base64url.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
