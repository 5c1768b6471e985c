package repository

import (
	"context"
	"database/sql"
	"errors"

	"credential-lifecycle/internal/db"
	identitydomain "credential-lifecycle/internal/identity/domain"
	identityrepo "credential-lifecycle/internal/identity/repository"
	"credential-lifecycle/internal/user/domain"
)

const userColumns = `id, tenant_id, given_names, family_names, email, phone, status,
	email_verified, phone_verified, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
// Returns ErrEmailTaken on a duplicate email.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	return insertUser(ctx, r.db, u)
}

// CreateWithCredential inserts the user and its credential in one transaction.
// Returns ErrEmailTaken on a duplicate email; nothing is stored then.
func (r *PostgresRepository) CreateWithCredential(ctx context.Context, u *domain.User, c *identitydomain.Credential) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		return identityrepo.InsertCredential(ctx, tx, c)
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertUser(ctx context.Context, ex execer, u *domain.User) error {
	_, err := ex.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.TenantID, u.GivenNames, u.FamilyNames, u.Email,
		sql.NullString{String: u.Phone, Valid: u.Phone != ""},
		string(u.Status), u.EmailVerified, u.PhoneVerified, u.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var (
		u      domain.User
		phone  sql.NullString
		status string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.TenantID, &u.GivenNames, &u.FamilyNames, &u.Email, &phone, &status,
		&u.EmailVerified, &u.PhoneVerified, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Phone = phone.String
	u.Status = domain.UserStatus(status)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
