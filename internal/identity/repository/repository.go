package repository

import (
	"context"

	"credential-lifecycle/internal/identity/domain"
)

// Repository defines persistence for user credentials.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Credential, error)
	Create(ctx context.Context, c *domain.Credential) error
}
