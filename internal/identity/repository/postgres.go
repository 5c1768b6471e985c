package repository

import (
	"context"
	"database/sql"
	"errors"

	"credential-lifecycle/internal/identity/domain"
)

// PostgresRepository implements Repository using user_credentials.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a credential repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByUserID returns the credential for the user, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*domain.Credential, error) {
	var c domain.Credential
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, password_hash, updated_at FROM user_credentials WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &c.PasswordHash, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// Create persists the credential. The user row must already exist.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Credential) error {
	return insertCredential(ctx, r.db, c)
}

// InsertCredential inserts c inside tx, so it commits or rolls back with the user row it
// belongs to.
func InsertCredential(ctx context.Context, tx *sql.Tx, c *domain.Credential) error {
	return insertCredential(ctx, tx, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCredential(ctx context.Context, ex execer, c *domain.Credential) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO user_credentials (user_id, password_hash, updated_at) VALUES ($1, $2, $3)`,
		c.UserID, c.PasswordHash, c.UpdatedAt,
	)
	return err
}
