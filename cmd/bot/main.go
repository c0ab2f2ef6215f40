// Package main is the entry point for the cinema bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cinema-bot/internal/bot"
	"cinema-bot/internal/config"
	"cinema-bot/internal/kinopoisk"
	"cinema-bot/internal/pkg/db"
	"cinema-bot/internal/pkg/lock"
	"cinema-bot/internal/quiz"
	"cinema-bot/internal/repository"
)

// sessionSweepInterval is how often idle quiz sessions are swept.
const sessionSweepInterval = 10 * time.Minute

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load .env if present; real environment takes precedence
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded environment from .env")
	}

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Kinopoisk.APIKey == "" {
		log.Fatal().Msg("Kinopoisk API key is required (KINOPOISK_API_KEY)")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize the movie catalog client
	catalog := kinopoisk.New(&kinopoisk.Config{
		APIKey:  cfg.Kinopoisk.APIKey,
		BaseURL: cfg.Kinopoisk.BaseURL,
		Timeout: cfg.Kinopoisk.Timeout,
	})

	// Initialize the quiz
	sessionStore := quiz.NewStore(cfg.Quiz.SessionTTL)
	sessionStore.StartCleaner(sessionSweepInterval)

	engine := quiz.NewEngine(catalog, sessionStore, &quiz.Config{
		Questions: cfg.Quiz.Questions,
		Options:   cfg.Quiz.Options,
	})

	historyRepo := repository.NewHistoryRepository(dbPool.Pool)
	userLock := lock.NewUserLock()

	deps := &bot.Dependencies{
		Config:   cfg,
		Catalog:  catalog,
		Engine:   engine,
		History:  historyRepo,
		UserLock: userLock,
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create search_history table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS search_history (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			query TEXT NOT NULL,
			movie_id VARCHAR(64) NOT NULL,
			movie_title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_search_history_user_time ON search_history(user_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: search_history table created")

	// Migration 2: Create movie_stats table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS movie_stats (
			user_id BIGINT NOT NULL,
			movie_id VARCHAR(64) NOT NULL,
			movie_title TEXT NOT NULL,
			times_shown BIGINT NOT NULL DEFAULT 1,
			PRIMARY KEY (user_id, movie_id)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: movie_stats table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
