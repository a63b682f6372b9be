package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"golang.org/x/time/rate"

	"github.com/demoday/pitchhub/internal/api/handlers"
	"github.com/demoday/pitchhub/internal/api/middleware"
	"github.com/demoday/pitchhub/internal/config"
	"github.com/demoday/pitchhub/internal/embeddings"
	"github.com/demoday/pitchhub/internal/generation"
	"github.com/demoday/pitchhub/internal/jobs"
	"github.com/demoday/pitchhub/internal/observability"
	"github.com/demoday/pitchhub/internal/repository"
	"github.com/demoday/pitchhub/internal/retrieval"
	"github.com/demoday/pitchhub/internal/service"
	"github.com/demoday/pitchhub/internal/storage"
	"github.com/demoday/pitchhub/internal/synthesis"
	"github.com/demoday/pitchhub/internal/workers"
	"github.com/demoday/pitchhub/pkg/database"
)

const backfillBatchSize = 500

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL,
		database.WithAfterConnect(pgxvec.RegisterTypes),
		database.WithMaxConns(cfg.DBMaxConns),
	)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	embeddingClient, err := newEmbeddingClient(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize embedding client", "error", err)
		os.Exit(1)
	}

	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required for feedback generation")
		os.Exit(1)
	}
	generationClient := generation.NewOpenAIClient(cfg.OpenAIAPIKey, generation.WithModel(cfg.GenerationModel))

	sessionsRepo := repository.NewPitchSessionsRepository(db)
	passagesRepo := repository.NewKnowledgePassagesRepository(db)

	retriever := retrieval.NewRetriever(retrieval.RetrieverParams{
		EmbeddingClient: embeddingClient,
		Store:           passagesRepo,
		MinQueryChars:   cfg.MinPitchChars,
		DefaultTopK:     cfg.RetrievalTopK,
		MaxTopK:         cfg.RetrievalMaxTopK,
		QueryCacheSize:  cfg.QueryCacheSize,
	})

	synthesizer := synthesis.NewSynthesizer(synthesis.SynthesizerParams{
		Composer:  synthesis.NewComposer(cfg.MaxPromptChars, cfg.MaxContextChars),
		Generator: generationClient,
	})

	feedbackService := service.NewFeedbackService(retriever, synthesizer, nil)

	var riverClient *river.Client[pgx.Tx]
	var jobInserter service.PassageEmbeddingEnqueuer
	if cfg.RiverEnabled {
		riverClient, err = initRiver(ctx, db, cfg, embeddingClient, passagesRepo)
		if err != nil {
			slog.Error("Failed to initialize River job queue", "error", err)
			os.Exit(1)
		}
		jobInserter = jobs.NewRiverJobInserter(riverClient)
		slog.Info("River job queue enabled",
			"workers", cfg.RiverWorkers,
			"max_attempts", cfg.RiverMaxAttempts,
			"rate_limit", cfg.EmbeddingRateLimit,
		)
	} else {
		slog.Info("River job queue disabled (RIVER_ENABLED=false); passages stay unembedded until backfill")
	}

	passagesService := service.NewKnowledgePassagesService(passagesRepo, jobInserter, nil)
	sessionsService := service.NewPitchSessionsService(sessionsRepo, feedbackService)

	// Pick up passages created while the queue was down.
	if jobInserter != nil {
		if n, err := passagesService.BackfillEmbeddings(ctx, backfillBatchSize); err != nil {
			slog.Error("Embedding backfill failed", "error", err)
		} else if n > 0 {
			slog.Info("Embedding backfill scheduled", "jobs", n)
		}
	}

	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	sessionsHandler := handlers.NewPitchSessionsHandler(sessionsService)
	passagesHandler := handlers.NewKnowledgePassagesHandler(passagesService)
	healthHandler := handlers.NewHealthHandler(db)

	// Public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)

	// Protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /v1/pitch/feedback", feedbackHandler.Evaluate)

	protectedMux.HandleFunc("POST /v1/pitch-sessions", sessionsHandler.Create)
	protectedMux.HandleFunc("GET /v1/pitch-sessions", sessionsHandler.List)
	protectedMux.HandleFunc("GET /v1/pitch-sessions/{id}", sessionsHandler.Get)
	protectedMux.HandleFunc("PATCH /v1/pitch-sessions/{id}", sessionsHandler.Update)
	protectedMux.HandleFunc("DELETE /v1/pitch-sessions/{id}", sessionsHandler.Delete)
	protectedMux.HandleFunc("POST /v1/pitch-sessions/{id}/feedback", sessionsHandler.Evaluate)

	protectedMux.HandleFunc("POST /v1/knowledge-passages", passagesHandler.Create)
	protectedMux.HandleFunc("GET /v1/knowledge-passages", passagesHandler.List)
	protectedMux.HandleFunc("GET /v1/knowledge-passages/{id}", passagesHandler.Get)
	protectedMux.HandleFunc("DELETE /v1/knowledge-passages/{id}", passagesHandler.Delete)

	if cfg.GCSBucket != "" {
		gcsClient, err := gcs.NewClient(ctx)
		if err != nil {
			slog.Error("Failed to create GCS client", "error", err)
			os.Exit(1)
		}
		defer gcsClient.Close()

		uploader := storage.NewUploader(gcsClient, cfg.GCSBucket,
			time.Duration(cfg.UploadExpiryMinutes)*time.Minute)
		uploadsHandler := handlers.NewUploadsHandler(uploader)
		protectedMux.HandleFunc("POST /v1/uploads/signed-url", uploadsHandler.CreateSignedURL)
		slog.Info("Signed uploads enabled", "bucket", cfg.GCSBucket)
	} else {
		slog.Info("Signed uploads disabled (GCS_BUCKET not set)")
	}

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux)

	// RequestID runs outermost so the logging middleware and handlers see it.
	var handler http.Handler = mainMux
	handler = middleware.MaxBody(cfg.MaxRequestBodyBytes)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Stop River (waits for in-flight jobs to complete)
	if riverClient != nil {
		slog.Info("Stopping River job queue...")
		if err := riverClient.Stop(shutdownCtx); err != nil {
			slog.Error("River forced to shutdown", "error", err)
		}
		slog.Info("River job queue stopped")
	}

	slog.Info("Server exited")
}

// newEmbeddingClient builds the embedding client for the configured provider.
func newEmbeddingClient(ctx context.Context, cfg *config.Config) (embeddings.Client, error) {
	switch cfg.EmbeddingProvider {
	case "google":
		return embeddings.NewGoogleClient(ctx, cfg.GoogleAPIKey,
			embeddings.WithGoogleDimensions(cfg.EmbeddingDimensions))
	default:
		return embeddings.NewOpenAIClient(cfg.OpenAIAPIKey,
			embeddings.WithDimensions(cfg.EmbeddingDimensions)), nil
	}
}

// setupLogging configures slog with JSON output, trace correlation, and the
// specified log level.
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	inner := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(observability.NewTraceContextHandler(inner)))
}

// initRiver initializes the River job queue client and workers.
func initRiver(
	ctx context.Context,
	db *pgxpool.Pool,
	cfg *config.Config,
	embeddingClient embeddings.Client,
	passagesRepo *repository.KnowledgePassagesRepository,
) (*river.Client[pgx.Tx], error) {
	// River keeps its job tables in its own migration line, separate from the
	// application schema in migrations/.
	migrator, err := rivermigrate.New(riverpgxv5.New(db), nil)
	if err != nil {
		return nil, err
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1)

	embeddingWorker := workers.NewPassageEmbeddingWorker(passagesRepo, embeddingClient, limiter)

	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, embeddingWorker)

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			service.EmbeddingsQueueName: {MaxWorkers: cfg.RiverWorkers},
		},
		Workers:     riverWorkers,
		JobTimeout:  60 * time.Second,
		MaxAttempts: cfg.RiverMaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, err
	}

	return riverClient, nil
}
