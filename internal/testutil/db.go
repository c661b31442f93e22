package testutil

import (
	"context"
	"os"
	"testing"

	"covidbot/internal/db"
)

// NewTestDB connects to the database named by TEST_DATABASE_URL, runs
// migrations and wipes all tables. Tests that need it are skipped when the
// variable is unset.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database test")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(database.Close)

	if err := database.RunMigrations(connString); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tables := []string{
		"query_outcomes",
		"blacklist",
		"handover_requests",
		"volunteers",
		"question_answers",
		"subtopics",
		"topics",
	}
	for _, table := range tables {
		if _, err := database.Pool.Exec(ctx, "TRUNCATE TABLE "+table); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
	return database
}
