// Package dbtest prepares a real Postgres database for integration tests.
package dbtest

import (
	"fmt"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // golang postgres driver
	"github.com/jmoiron/sqlx"
)

// Open connects to the database named by the DSN in envKey and applies the
// migration files. The test is skipped when envKey is unset.
func Open(tb testing.TB, envKey string, migrationFiles ...string) *sqlx.DB {
	tb.Helper()

	dsn := os.Getenv(envKey)
	if dsn == "" {
		tb.Skipf("%s is not set", envKey)
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		tb.Fatalf("sqlx.Connect: %v", err)
	}

	tb.Cleanup(func() { _ = db.Close() })

	if err := MigrateFromFile(db, migrationFiles...); err != nil {
		tb.Fatalf("dbtest.MigrateFromFile: %v", err)
	}

	return db
}

// MigrateFromFile executes the SQL files over a database connection in the
// given order.
func MigrateFromFile(db *sqlx.DB, fileNames ...string) error {
	for _, fileName := range fileNames {
		script, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("os.ReadFile: %w", err)
		}

		if _, err = db.Exec(string(script)); err != nil {
			return fmt.Errorf("db.Exec(%s): %w", fileName, err)
		}
	}

	return nil
}
