package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB connects to a real Postgres instance for integration tests.
// Set TEST_DATABASE_URL (or PGHOST/PGPORT/PGUSER/PGDATABASE) to run these;
// otherwise the calling test skips.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := getTestDatabaseURL()
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration tests")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	cleanupTestData(t, pool)
	t.Cleanup(func() {
		cleanupTestData(t, pool)
		pool.Close()
	})

	return pool
}

func getTestDatabaseURL() string {
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}

	pgHost := os.Getenv("PGHOST")
	pgPort := os.Getenv("PGPORT")
	pgUser := os.Getenv("PGUSER")
	pgDatabase := os.Getenv("PGDATABASE")

	if pgHost == "" {
		return ""
	}
	if pgPort == "" {
		pgPort = "5432"
	}
	if pgUser == "" {
		pgUser = "postgres"
	}
	if pgDatabase == "" {
		pgDatabase = "promptune_test"
	}

	if len(pgHost) > 0 && pgHost[0] == '/' {
		return fmt.Sprintf("postgres://%s@:%s/%s?host=%s&sslmode=disable",
			pgUser, pgPort, pgDatabase, pgHost)
	}

	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=disable",
		pgUser, pgHost, pgPort, pgDatabase)
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	for _, table := range []string{"optimization_trials", "optimization_runs", "training_examples"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Logf("cleanup of %s failed (table may not exist yet): %v", table, err)
		}
	}
}
