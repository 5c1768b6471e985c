package security

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"credential-lifecycle/internal/autherr"
)

// Codec hashes and verifies secrets (passwords and refresh secrets) with bcrypt over the
// normalized form of the secret. Callers must not log or persist plaintext secrets.
//
// bcrypt is CPU-bound; a weighted semaphore bounds how many hashes run at once so a burst of
// logins cannot occupy every core.
type Codec struct {
	Cost int
	sem  *semaphore.Weighted
}

// NewCodec returns a Codec with the given bcrypt cost (4–31) and at most maxConcurrent
// simultaneous hash operations. Cost 12 is a reasonable default for interactive login;
// maxConcurrent <= 0 means runtime.NumCPU().
func NewCodec(cost, maxConcurrent int) *Codec {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}
	return &Codec{Cost: cost, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Hash returns the bcrypt hash of Normalize(secret), suitable for storage.
// ctx bounds only the wait for a hashing slot; a started hash runs to completion.
func (c *Codec) Hash(ctx context.Context, secret string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", autherr.Internal("security.hash", err)
	}
	defer c.sem.Release(1)
	b, err := bcrypt.GenerateFromPassword([]byte(Normalize(secret)), c.Cost)
	if err != nil {
		return "", autherr.Internal("security.hash", err)
	}
	return string(b), nil
}

// Verify reports whether secret matches storedHash. A mismatch is (false, nil). A malformed
// stored hash is an *autherr.InternalError, never false, so corrupted rows are not mistaken
// for wrong passwords.
func (c *Codec) Verify(ctx context.Context, secret, storedHash string) (bool, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return false, autherr.Internal("security.verify", err)
	}
	defer c.sem.Release(1)
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(Normalize(secret)))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, autherr.Internal("security.verify", err)
}
