package service

import (
	"fmt"
	"time"

	"credential-lifecycle/internal/security"
)

// SessionIDLength is the length of ids produced by NewSessionID.
const SessionIDLength = 26

// sessionIDEntropyBytes encodes to 8 base64url characters.
const sessionIDEntropyBytes = 6

// NewSessionID returns an id made of the UTC start time to 1/10000 s (18 digits) followed by
// 8 random base64url characters. Ids sort by creation time.
func NewSessionID(now time.Time) (string, error) {
	now = now.UTC()
	suffix, err := security.RandomToken(sessionIDEntropyBytes)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d%s", now.Format("20060102150405"), now.Nanosecond()/100000, suffix), nil
}
