package repository

import (
	"context"
	"errors"

	identitydomain "credential-lifecycle/internal/identity/domain"
	"credential-lifecycle/internal/user/domain"
)

// ErrEmailTaken is returned by Create when another user already has the email.
var ErrEmailTaken = errors.New("email already registered")

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// CreateWithCredential stores the user and its password credential together: either
	// both rows exist afterwards or neither does.
	CreateWithCredential(ctx context.Context, u *domain.User, c *identitydomain.Credential) error
}
