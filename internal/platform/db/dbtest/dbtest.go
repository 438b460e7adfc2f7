// Package dbtest gives repository tests a migrated Postgres schema of their
// own. Tests skip unless TEST_DATABASE_URL or DATABASE_URL points at a
// server the test user may create schemas on.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediconsult/mediconsult/internal/platform/db"
	"github.com/mediconsult/mediconsult/migrations"
)

// URL returns the database the integration tests run against, or "".
func URL() string {
	if u := os.Getenv("TEST_DATABASE_URL"); u != "" {
		return u
	}
	return os.Getenv("DATABASE_URL")
}

// Open creates a fresh schema, applies every migration to it and returns a
// pool whose connections use it as their search path. The schema is dropped
// when the test ends.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()
	url := URL()
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}
	ctx := context.Background()

	admin, err := db.NewPool(ctx, db.PoolConfig{URL: url, MaxConns: 2, AppName: "mediconsult-test"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schema}.Sanitize()); err != nil {
		admin.Close()
		t.Fatalf("create schema %s: %v", schema, err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+pgx.Identifier{schema}.Sanitize()+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:        url,
		MaxConns:   16,
		AppName:    "mediconsult-test",
		SearchPath: schema,
	})
	if err != nil {
		t.Fatalf("connect to %s: %v", schema, err)
	}
	t.Cleanup(pool.Close)

	if _, err := db.NewMigrator(pool, migrations.Files).Up(ctx); err != nil {
		t.Fatalf("migrate %s: %v", schema, err)
	}
	return pool
}

// SeedUser inserts a patient account and returns its id.
func SeedUser(t testing.TB, pool *pgxpool.Pool, username, name, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, password_hash, name)
		VALUES ($1, $2, 'x', $3) RETURNING id`, username, email, name).Scan(&id)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return id
}

// SeedDoctor inserts a doctor, optionally linked to a user account, and
// returns its id.
func SeedDoctor(t testing.TB, pool *pgxpool.Pool, name string, userID *int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO doctors (name, user_id, video_consult)
		VALUES ($1, $2, TRUE) RETURNING id`, name, userID).Scan(&id)
	if err != nil {
		t.Fatalf("seed doctor %s: %v", name, err)
	}
	return id
}
