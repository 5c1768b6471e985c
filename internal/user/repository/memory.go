package repository

import (
	"context"
	"errors"
	"sync"

	identitydomain "credential-lifecycle/internal/identity/domain"
	"credential-lifecycle/internal/user/domain"
)

// CredentialWriter stores password credentials (e.g. the identity MemoryRepository).
type CredentialWriter interface {
	Create(ctx context.Context, c *identitydomain.Credential) error
}

// MemoryRepository is an in-memory Repository for tests and database-less development runs.
type MemoryRepository struct {
	mu          sync.RWMutex
	byID        map[string]*domain.User
	byEmail     map[string]string
	credentials CredentialWriter
}

// NewMemoryRepository returns an empty in-memory user repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.byID[r.byEmail[email]]), nil
}

func (r *MemoryRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	r.byID[u.ID] = clone(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

// WithCredentials sets the store CreateWithCredential writes credentials to and returns r.
func (r *MemoryRepository) WithCredentials(c CredentialWriter) *MemoryRepository {
	r.mu.Lock()
	r.credentials = c
	r.mu.Unlock()
	return r
}

// CreateWithCredential writes the credential, then the user, under the repository lock.
// A failed credential write leaves no user behind.
func (r *MemoryRepository) CreateWithCredential(ctx context.Context, u *domain.User, c *identitydomain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.credentials == nil {
		return errors.New("memory user repository: no credential store")
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	if err := r.credentials.Create(ctx, c); err != nil {
		return err
	}
	r.byID[u.ID] = clone(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

// SetStatus changes the stored status of a user. Used by tests and seed tooling.
func (r *MemoryRepository) SetStatus(userID string, status domain.UserStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		u.Status = status
	}
}

func clone(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
