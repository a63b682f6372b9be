// Package workers provides River job workers.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/embeddings"
	"github.com/demoday/pitchhub/internal/models"
	"github.com/demoday/pitchhub/internal/service"
)

// passageEmbeddingStore is the minimal data access the worker needs.
type passageEmbeddingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgePassage, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
}

// PassageEmbeddingWorker generates and stores embeddings for knowledge passages.
// A shared rate limiter keeps concurrent workers under the embedding provider's
// request quota.
type PassageEmbeddingWorker struct {
	river.WorkerDefaults[service.PassageEmbeddingArgs]

	store           passageEmbeddingStore
	embeddingClient embeddings.Client
	limiter         *rate.Limiter
}

// NewPassageEmbeddingWorker creates a worker that fetches the passage, calls the
// embedding provider, and stores the vector. limiter may be nil to disable
// rate limiting.
func NewPassageEmbeddingWorker(
	store passageEmbeddingStore,
	embeddingClient embeddings.Client,
	limiter *rate.Limiter,
) *PassageEmbeddingWorker {
	return &PassageEmbeddingWorker{
		store:           store,
		embeddingClient: embeddingClient,
		limiter:         limiter,
	}
}

const passageEmbeddingTimeout = 30 * time.Second

// Timeout limits how long a single embedding job can run.
func (w *PassageEmbeddingWorker) Timeout(*river.Job[service.PassageEmbeddingArgs]) time.Duration {
	return passageEmbeddingTimeout
}

// Work loads the passage, generates the embedding, and persists it.
func (w *PassageEmbeddingWorker) Work(ctx context.Context, job *river.Job[service.PassageEmbeddingArgs]) error {
	args := job.Args

	passage, err := w.store.GetByID(ctx, args.PassageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Passage deleted before the job ran; nothing to do.
			slog.Info("embedding: passage gone", "passage_id", args.PassageID)

			return nil
		}

		return fmt.Errorf("get passage: %w", err)
	}

	text := strings.TrimSpace(passage.Passage)
	if text == "" {
		slog.Info("embedding: skipped (empty passage)", "passage_id", args.PassageID)

		return nil
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	embedding, err := w.embeddingClient.CreateEmbedding(ctx, text)
	if err != nil {
		if job.Attempt >= job.MaxAttempts {
			slog.Error("embedding: provider failed (final attempt)",
				"passage_id", args.PassageID,
				"error", err,
			)

			return nil
		}

		return fmt.Errorf("create embedding: %w", err)
	}

	if err := w.store.UpdateEmbedding(ctx, args.PassageID, embedding); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			slog.Info("embedding: passage deleted during embed", "passage_id", args.PassageID)

			return nil
		}

		return fmt.Errorf("update passage embedding: %w", err)
	}

	slog.Info("embedding: stored", "passage_id", args.PassageID)

	return nil
}
