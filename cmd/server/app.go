package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/elvispreakerebi/jotta-backend/internal/config"
	"github.com/elvispreakerebi/jotta-backend/internal/events"
	"github.com/elvispreakerebi/jotta-backend/internal/media"
	"github.com/elvispreakerebi/jotta-backend/internal/platform/postgres"
	"github.com/elvispreakerebi/jotta-backend/internal/service"
	"github.com/elvispreakerebi/jotta-backend/internal/service/auth"
	"github.com/elvispreakerebi/jotta-backend/internal/store"
	"github.com/elvispreakerebi/jotta-backend/internal/summarization"
	"github.com/elvispreakerebi/jotta-backend/internal/task"
	"github.com/elvispreakerebi/jotta-backend/internal/transcription"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	videoJobStore store.VideoJobStore
	taskStore     *postgres.PostgresTaskStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	videoJobService  service.VideoJobService

	resolver    media.Resolver
	transcriber transcription.Transcriber
	summarizer  summarization.Summarizer

	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established before
// application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.videoJobStore = postgres.NewPostgresVideoJobStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	app.resolver, err = media.NewYtdlpResolver(cfg.Media.YtdlpPath, cfg.Media.TempDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media resolver: %w", err)
	}

	app.transcriber, err = setupTranscriber(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transcriber: %w", err)
	}
	logger.Info("Transcriber initialized", "provider", cfg.Transcription.Provider)

	app.summarizer, err = setupSummarizer(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}
	logger.Info("Summarizer initialized", "provider", cfg.Summarization.Provider)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	jobRepoAdapter := service.NewVideoJobRepositoryAdapter(app.videoJobStore, db)
	app.videoJobService, err = service.NewVideoJobService(jobRepoAdapter, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create video job service: %w", err)
	}

	taskFactory := task.NewFlashcardGenerationTaskFactory(
		app.videoJobService,
		app.resolver,
		app.transcriber,
		app.summarizer,
		cfg.Summarization.ChunkSize,
		logger,
	)

	// Recovered task rows are rebuilt into executable tasks by the factory
	app.taskStore.SetRehydrator(taskFactory)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		MaxAttempts:  cfg.Task.MaxAttempts,
		RetryDelay:   time.Duration(cfg.Task.RetryDelaySeconds) * time.Second,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	taskFactoryHandler := task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupTranscriber builds the configured transcription backend.
func setupTranscriber(cfg *config.Config, logger *slog.Logger) (transcription.Transcriber, error) {
	switch cfg.Transcription.Provider {
	case "whisper":
		return transcription.NewWhisperTranscriber(cfg.Transcription.Whisper, logger)
	case "assemblyai":
		provider, err := transcription.NewAssemblyAIProvider(cfg.Transcription.AssemblyAI, logger)
		if err != nil {
			return nil, err
		}
		interval := time.Duration(cfg.Transcription.AssemblyAI.PollIntervalSeconds) * time.Second
		return transcription.NewPoller(
			provider,
			interval,
			cfg.Transcription.AssemblyAI.MaxPolls,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", cfg.Transcription.Provider)
	}
}

// setupSummarizer builds the configured summarization backend.
func setupSummarizer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (summarization.Summarizer, error) {
	switch cfg.Summarization.Provider {
	case "gemini":
		return summarization.NewGeminiSummarizer(ctx, logger, cfg.Summarization)
	case "huggingface":
		return summarization.NewHuggingFaceSummarizer(logger, cfg.Summarization)
	default:
		return nil, fmt.Errorf("unknown summarization provider: %s", cfg.Summarization.Provider)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
