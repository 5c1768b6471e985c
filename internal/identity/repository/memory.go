package repository

import (
	"context"
	"errors"
	"sync"

	"credential-lifecycle/internal/identity/domain"
)

// ErrCredentialExists is returned by MemoryRepository.Create when the user already has a credential.
var ErrCredentialExists = errors.New("credential already exists")

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu sync.RWMutex
	m  map[string]domain.Credential
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Credential)}
}

func (r *MemoryRepository) GetByUserID(ctx context.Context, userID string) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[userID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryRepository) Create(ctx context.Context, c *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[c.UserID]; ok {
		return ErrCredentialExists
	}
	r.m[c.UserID] = *c
	return nil
}
