// Package testutils provides helpers for database integration tests.
//
// Tests run against a real Postgres instance named by the
// TASKDECK_TEST_DB_URL environment variable and are skipped when it is
// unset. Each test runs inside its own transaction which is rolled back on
// completion, so tests can run in parallel without interfering with each
// other and need no manual cleanup.
package testutils

import (
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"

	// Registers the pgx driver under the name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/bszczerba/taskdeck/internal/platform/postgres"
)

const testDBEnvVar = "TASKDECK_TEST_DB_URL"

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDB opens a connection to the test database and ensures the schema
// is migrated. The test is skipped when TASKDECK_TEST_DB_URL is unset and
// the connection is closed automatically when the test finishes.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv(testDBEnvVar)
	if dbURL == "" {
		t.Skipf("Skipping integration test: %s not set", testDBEnvVar)
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database connection")
	t.Cleanup(func() {
		require.NoError(t, db.Close(), "failed to close test database connection")
	})

	require.NoError(t, db.Ping(), "failed to ping test database")

	migrateOnce.Do(func() {
		migrateErr = postgres.MigrateUp(db)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, giving the
// test an isolated view of the database.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin test transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
