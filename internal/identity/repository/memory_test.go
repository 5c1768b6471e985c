package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"credential-lifecycle/internal/identity/domain"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	if c, err := r.GetByUserID(ctx, "u1"); c != nil || err != nil {
		t.Fatalf("empty repository: got %v, %v", c, err)
	}
	cred := &domain.Credential{UserID: "u1", PasswordHash: "$2a$04$x", UpdatedAt: time.Now().UTC()}
	if err := r.Create(ctx, cred); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := r.GetByUserID(ctx, "u1")
	if err != nil || got == nil || got.PasswordHash != cred.PasswordHash {
		t.Fatalf("GetByUserID = %v, %v", got, err)
	}
	if err := r.Create(ctx, cred); !errors.Is(err, ErrCredentialExists) {
		t.Errorf("second Create: want ErrCredentialExists, got %v", err)
	}
}
