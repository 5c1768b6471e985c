package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"credential-lifecycle/internal/db"
	"credential-lifecycle/internal/session/domain"
)

const sessionColumns = `id, user_id, started_at, last_activity_at, closed_at, revoked, expires_at,
	ip_address, user_agent, refresh_hash, refresh_expires_at, rotation_counter, key_id`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ReplaceActive closes the user's active sessions and inserts s under a per-user advisory lock.
func (r *PostgresRepository) ReplaceActive(ctx context.Context, s *domain.Session, at time.Time) ([]string, error) {
	var revoked []string
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := db.LockKey(ctx, tx, "session:"+s.UserID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, `UPDATE sessions
			SET revoked = TRUE, closed_at = $2, refresh_hash = NULL, refresh_expires_at = NULL
			WHERE user_id = $1 AND NOT revoked AND closed_at IS NULL
			RETURNING id`, s.UserID, at)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			revoked = append(revoked, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		hash, refreshExp := grantColumns(s.Refresh)
		_, err = tx.ExecContext(ctx, `INSERT INTO sessions (`+sessionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			s.ID, s.UserID, s.StartedAt, s.LastActivityAt, nullTime(s.ClosedAt), s.Revoked, s.ExpiresAt,
			nullString(s.IPAddress), nullString(s.UserAgent), hash, refreshExp, s.RotationCounter, nullString(s.KeyID),
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

// UpdateLastActivity sets last_activity_at. expires_at is never changed.
func (r *PostgresRepository) UpdateLastActivity(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET last_activity_at = $2 WHERE id = $1`, id, at)
	return err
}

// Revoke marks the session revoked, closes it if still open and clears its refresh grant.
// Revoking a missing or already revoked session is a no-op.
func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions
		SET revoked = TRUE, closed_at = COALESCE(closed_at, $2), refresh_hash = NULL, refresh_expires_at = NULL
		WHERE id = $1`, id, at)
	return err
}

// SetRefresh stores the initial refresh grant of an active session.
func (r *PostgresRepository) SetRefresh(ctx context.Context, id string, grant domain.RefreshGrant, counter int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions
		SET refresh_hash = $2, refresh_expires_at = $3, rotation_counter = $4
		WHERE id = $1 AND NOT revoked AND closed_at IS NULL`, id, grant.Hash, grant.ExpiresAt, counter)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// RotateRefresh inserts the rotation record, then swaps the grant only if the stored hash
// still equals ExpectedHash. The record is rolled back with a lost swap.
func (r *PostgresRepository) RotateRefresh(ctx context.Context, rot Rotation) (int, error) {
	var counter int
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO refresh_rotations (id, session_id, previous_hash, rotated_at) VALUES ($1, $2, $3, $4)`,
			rot.Record.ID, rot.SessionID, rot.Record.PreviousHash, rot.Record.RotatedAt,
		); err != nil {
			return err
		}
		err := tx.QueryRowContext(ctx, `UPDATE sessions
			SET refresh_hash = $3, refresh_expires_at = $4, rotation_counter = rotation_counter + 1, last_activity_at = $5
			WHERE id = $1 AND refresh_hash = $2 AND NOT revoked AND closed_at IS NULL
			RETURNING rotation_counter`,
			rot.SessionID, rot.ExpectedHash, rot.Next.Hash, rot.Next.ExpiresAt, rot.At,
		).Scan(&counter)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRotationConflict
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	return counter, nil
}

// ListRotations returns the rotation history of the session, oldest first.
func (r *PostgresRepository) ListRotations(ctx context.Context, sessionID string) ([]domain.RotationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, session_id, previous_hash, rotated_at
		FROM refresh_rotations WHERE session_id = $1 ORDER BY rotated_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.RotationRecord
	for rows.Next() {
		var rec domain.RotationRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.PreviousHash, &rec.RotatedAt); err != nil {
			return nil, err
		}
		rec.RotatedAt = rec.RotatedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestRotation returns the most recent rotation record of the session, or nil if none.
func (r *PostgresRepository) LatestRotation(ctx context.Context, sessionID string) (*domain.RotationRecord, error) {
	var rec domain.RotationRecord
	err := r.db.QueryRowContext(ctx, `SELECT id, session_id, previous_hash, rotated_at
		FROM refresh_rotations WHERE session_id = $1 ORDER BY rotated_at DESC, id DESC LIMIT 1`, sessionID,
	).Scan(&rec.ID, &rec.SessionID, &rec.PreviousHash, &rec.RotatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.RotatedAt = rec.RotatedAt.UTC()
	return &rec, nil
}

func scanSession(row *sql.Row) (*domain.Session, error) {
	var (
		s                    domain.Session
		closedAt, refreshExp sql.NullTime
		ip, ua, hash, keyID  sql.NullString
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.StartedAt, &s.LastActivityAt, &closedAt, &s.Revoked, &s.ExpiresAt,
		&ip, &ua, &hash, &refreshExp, &s.RotationCounter, &keyID); err != nil {
		return nil, err
	}
	s.StartedAt = s.StartedAt.UTC()
	s.LastActivityAt = s.LastActivityAt.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()
	if closedAt.Valid {
		t := closedAt.Time.UTC()
		s.ClosedAt = &t
	}
	if hash.Valid && refreshExp.Valid {
		s.Refresh = &domain.RefreshGrant{Hash: hash.String, ExpiresAt: refreshExp.Time.UTC()}
	}
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	s.KeyID = keyID.String
	return &s, nil
}

func grantColumns(g *domain.RefreshGrant) (sql.NullString, sql.NullTime) {
	if g == nil {
		return sql.NullString{}, sql.NullTime{}
	}
	return sql.NullString{String: g.Hash, Valid: true}, sql.NullTime{Time: g.ExpiresAt, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRotationConflict
	}
	return nil
}
