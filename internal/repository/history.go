// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cinema-bot/internal/model"
)

// HistoryRepository persists the search history and per-movie view counters.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository instance.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// AddSearch appends one search to the user's history.
func (r *HistoryRepository) AddSearch(ctx context.Context, userID int64, query, movieID, movieTitle string) error {
	const q = `
		INSERT INTO search_history (user_id, query, movie_id, movie_title, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	if _, err := r.pool.Exec(ctx, q, userID, query, movieID, movieTitle); err != nil {
		return fmt.Errorf("failed to add search record: %w", err)
	}
	return nil
}

// RecentSearches returns the user's most recent searches, newest first.
func (r *HistoryRepository) RecentSearches(ctx context.Context, userID int64, limit int) ([]*model.SearchRecord, error) {
	const q = `
		SELECT id, user_id, query, movie_id, movie_title, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var records []*model.SearchRecord
	for rows.Next() {
		var rec model.SearchRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Query, &rec.MovieID, &rec.MovieTitle, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search history: %w", err)
	}

	return records, nil
}

// BumpShown increments the user's view counter for a movie, creating the row
// with a count of one on first view.
func (r *HistoryRepository) BumpShown(ctx context.Context, userID int64, movieID, movieTitle string) error {
	const q = `
		INSERT INTO movie_stats (user_id, movie_id, movie_title, times_shown)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, movie_id)
		DO UPDATE SET times_shown = movie_stats.times_shown + 1, movie_title = EXCLUDED.movie_title
	`

	if _, err := r.pool.Exec(ctx, q, userID, movieID, movieTitle); err != nil {
		return fmt.Errorf("failed to bump movie stats: %w", err)
	}
	return nil
}

// TopShown returns the user's most viewed movies, most viewed first.
func (r *HistoryRepository) TopShown(ctx context.Context, userID int64, limit int) ([]*model.MovieStat, error) {
	const q = `
		SELECT user_id, movie_id, movie_title, times_shown
		FROM movie_stats
		WHERE user_id = $1
		ORDER BY times_shown DESC, movie_title ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.MovieStat
	for rows.Next() {
		var st model.MovieStat
		if err := rows.Scan(&st.UserID, &st.MovieID, &st.MovieTitle, &st.TimesShown); err != nil {
			return nil, fmt.Errorf("failed to scan movie stat: %w", err)
		}
		stats = append(stats, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movie stats: %w", err)
	}

	return stats, nil
}
