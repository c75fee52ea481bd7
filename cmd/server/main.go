// Package main implements the entry point for the Jotta backend server,
// which turns submitted YouTube videos into flashcards through an
// asynchronous download, transcription and summarization pipeline.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/elvispreakerebi/jotta-backend/internal/config"
	"github.com/elvispreakerebi/jotta-backend/internal/platform/logger"
)

func main() {
	// Missing .env is fine; environment variables take over
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"transcription_provider", cfg.Transcription.Provider,
		"summarization_provider", cfg.Summarization.Provider)

	if err := run(cfg, appLogger); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// run wires the application together and blocks until shutdown.
func run(cfg *config.Config, appLogger *slog.Logger) error {
	ctx := context.Background()

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
