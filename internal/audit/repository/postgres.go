package repository

import (
	"context"
	"database/sql"

	"credential-lifecycle/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an access log repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Create appends the entry. The entry must have ID and CreatedAt set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.AccessLogEntry) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO access_log (id, user_id, attempted_email, created_at, success, ip, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, nullString(e.UserID), nullString(e.AttemptedEmail), e.CreatedAt, e.Success, nullString(e.IP), nullString(e.Detail),
	)
	return err
}

// ListByUser returns the user's entries, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AccessLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, attempted_email, created_at, success, ip, detail
		FROM access_log WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AccessLogEntry
	for rows.Next() {
		var (
			e                       domain.AccessLogEntry
			user, email, ip, detail sql.NullString
		)
		if err := rows.Scan(&e.ID, &user, &email, &e.CreatedAt, &e.Success, &ip, &detail); err != nil {
			return nil, err
		}
		e.UserID, e.AttemptedEmail, e.IP, e.Detail = user.String, email.String, ip.String, detail.String
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
