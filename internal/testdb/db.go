//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/taskman-api/internal/platform/postgres"
	"github.com/phrazzld/taskman-api/internal/redact"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds individual database operations in tests.
const TestTimeout = 5 * time.Second

// GetTestDatabaseURL returns TASKMAN_TEST_DATABASE_URL, falling back to
// DATABASE_URL.
func GetTestDatabaseURL() string {
	if u := os.Getenv("TASKMAN_TEST_DATABASE_URL"); u != "" {
		return u
	}
	return os.Getenv("DATABASE_URL")
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// OpenMigrated opens the test database and applies all migrations. The
// caller owns the returned handle.
func OpenMigrated(ctx context.Context) (*sql.DB, error) {
	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		return nil, errors.New("no test database configured")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, TestTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.New("ping test database: " + redact.Error(err))
	}

	if err := postgres.Migrate(ctx, db, "up", slog.Default()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// GetTestDB opens a migrated test database for t, skipping the test when no
// database is configured.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if !IsIntegrationTestEnvironment() {
		t.Skip("TASKMAN_TEST_DATABASE_URL or DATABASE_URL not set")
	}

	db, err := OpenMigrated(context.Background())
	require.NoError(t, err, "failed to prepare test database")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards, even
// when fn fails the test or panics.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
