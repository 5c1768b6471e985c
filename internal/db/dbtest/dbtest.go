// Package dbtest opens a migrated Postgres database for integration tests. Tests using it
// are skipped when DATABASE_URL is not set or the database is unreachable.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"credential-lifecycle/internal/db"
	"credential-lifecycle/internal/db/migrate"
)

// Open connects to DATABASE_URL and applies the migrations. The connection is closed when
// the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		t.Skipf("Database connection failed (expected in test environment): %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := migrate.Run(dsn, migrate.DirectionUp); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	return conn
}

// InsertUser stores a minimal user row and returns its id, for tables that reference users.
func InsertUser(t *testing.T, conn *sql.DB) string {
	t.Helper()
	id := uuid.New().String()
	_, err := conn.ExecContext(context.Background(),
		`INSERT INTO users (id, tenant_id, given_names, family_names, email, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, "tenant-it", "Ana", "Pérez", id+"@example.com", time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}
