// Package repository tests use testcontainers-go to spin up a PostgreSQL
// container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool
// Skips the test if Docker is not available
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = runMigrations(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// runMigrations applies the database schema
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS search_history (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			query TEXT NOT NULL,
			movie_id VARCHAR(64) NOT NULL,
			movie_title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_search_history_user_time ON search_history(user_id, created_at DESC)
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS movie_stats (
			user_id BIGINT NOT NULL,
			movie_id VARCHAR(64) NOT NULL,
			movie_title TEXT NOT NULL,
			times_shown BIGINT NOT NULL DEFAULT 1,
			PRIMARY KEY (user_id, movie_id)
		)
	`)
	return err
}

func TestHistoryRepository_AddAndRecentSearches(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewHistoryRepository(pool)
	ctx := context.Background()

	queries := []string{"начало", "матрица", "интерстеллар"}
	for i, q := range queries {
		err := repo.AddSearch(ctx, 100, q, string(rune('a'+i)), "Фильм "+q)
		require.NoError(t, err)
	}
	// Another user's searches must not leak in.
	require.NoError(t, repo.AddSearch(ctx, 200, "чужой запрос", "x", "Чужой фильм"))

	records, err := repo.RecentSearches(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "интерстеллар", records[0].Query)
	assert.Equal(t, "матрица", records[1].Query)
	assert.Equal(t, "начало", records[2].Query)
	for _, rec := range records {
		assert.Equal(t, int64(100), rec.UserID)
		assert.False(t, rec.CreatedAt.IsZero())
	}
}

func TestHistoryRepository_RecentSearchesLimit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewHistoryRepository(pool)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, repo.AddSearch(ctx, 100, "запрос", "id", "Фильм"))
	}

	records, err := repo.RecentSearches(ctx, 100, 10)
	require.NoError(t, err)
	assert.Len(t, records, 10)
}

func TestHistoryRepository_RecentSearchesEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewHistoryRepository(pool)

	records, err := repo.RecentSearches(context.Background(), 100, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryRepository_BumpShownCreatesAndIncrements(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewHistoryRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.BumpShown(ctx, 100, "301", "Матрица"))
	require.NoError(t, repo.BumpShown(ctx, 100, "301", "Матрица"))
	require.NoError(t, repo.BumpShown(ctx, 100, "302", "Начало"))

	stats, err := repo.TopShown(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Most shown first.
	assert.Equal(t, "301", stats[0].MovieID)
	assert.Equal(t, int64(2), stats[0].TimesShown)
	assert.Equal(t, "302", stats[1].MovieID)
	assert.Equal(t, int64(1), stats[1].TimesShown)
}

func TestHistoryRepository_BumpShownIsPerUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewHistoryRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.BumpShown(ctx, 100, "301", "Матрица"))
	require.NoError(t, repo.BumpShown(ctx, 200, "301", "Матрица"))
	require.NoError(t, repo.BumpShown(ctx, 200, "301", "Матрица"))

	statsA, err := repo.TopShown(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, statsA, 1)
	assert.Equal(t, int64(1), statsA[0].TimesShown)

	statsB, err := repo.TopShown(ctx, 200, 10)
	require.NoError(t, err)
	require.Len(t, statsB, 1)
	assert.Equal(t, int64(2), statsB[0].TimesShown)
}
