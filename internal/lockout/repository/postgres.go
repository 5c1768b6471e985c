package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"credential-lifecycle/internal/db"
	"credential-lifecycle/internal/lockout/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a lockout repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const insertIfAbsent = `INSERT INTO user_lockouts (user_id, failed_count, updated_at) VALUES ($1, 0, $2)
	ON CONFLICT (user_id) DO NOTHING`

func (r *PostgresRepository) Ensure(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, insertIfAbsent, userID, at)
	return err
}

// Get returns the user's state, or nil if no row exists.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*domain.State, error) {
	st, err := scanState(r.db.QueryRowContext(ctx, `SELECT user_id, failed_count, locked_until, last_attempt_at, updated_at
		FROM user_lockouts WHERE user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return st, err
}

func (r *PostgresRepository) Mutate(ctx context.Context, userID string, at time.Time, fn MutateFunc) (*domain.State, error) {
	var st *domain.State
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertIfAbsent, userID, at); err != nil {
			return err
		}
		var err error
		st, err = scanState(tx.QueryRowContext(ctx, `SELECT user_id, failed_count, locked_until, last_attempt_at, updated_at
			FROM user_lockouts WHERE user_id = $1 FOR UPDATE`, userID))
		if err != nil {
			return err
		}
		ev, err := fn(st)
		if err != nil {
			return err
		}
		st.UpdatedAt = at
		if _, err := tx.ExecContext(ctx, `UPDATE user_lockouts
			SET failed_count = $2, locked_until = $3, last_attempt_at = $4, updated_at = $5
			WHERE user_id = $1`,
			userID, st.FailedCount, nullTime(st.LockedUntil), nullTime(st.LastAttemptAt), st.UpdatedAt,
		); err != nil {
			return err
		}
		if ev == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO lockout_events (id, user_id, kind, reason, actor_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			ev.ID, ev.UserID, string(ev.Kind), nullString(ev.Reason), nullString(ev.ActorID), ev.CreatedAt,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ListEvents returns the user's lock and unlock events, oldest first.
func (r *PostgresRepository) ListEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, kind, reason, actor_id, created_at
		FROM lockout_events WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Event
	for rows.Next() {
		var (
			ev            domain.Event
			kind          string
			reason, actor sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &kind, &reason, &actor, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Kind = domain.EventKind(kind)
		ev.Reason = reason.String
		ev.ActorID = actor.String
		ev.CreatedAt = ev.CreatedAt.UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanState(row *sql.Row) (*domain.State, error) {
	var (
		st                  domain.State
		lockedUntil, lastAt sql.NullTime
	)
	if err := row.Scan(&st.UserID, &st.FailedCount, &lockedUntil, &lastAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	st.UpdatedAt = st.UpdatedAt.UTC()
	if lockedUntil.Valid {
		t := lockedUntil.Time.UTC()
		st.LockedUntil = &t
	}
	if lastAt.Valid {
		t := lastAt.Time.UTC()
		st.LastAttemptAt = &t
	}
	return &st, nil
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
