package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/models"
)

const defaultListLimit = 100

// KnowledgePassagesRepository defines the interface for knowledge passages data access.
type KnowledgePassagesRepository interface {
	Create(ctx context.Context, req *models.CreateKnowledgePassageRequest) (*models.KnowledgePassage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgePassage, error)
	List(ctx context.Context, filters *models.ListKnowledgePassagesFilters) ([]models.KnowledgePassage, error)
	CountBySource(ctx context.Context, sourceID *uuid.UUID) (int, error)
	ListUnembeddedIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// KnowledgePassagesService handles business logic for knowledge passages.
// Embeddings are generated asynchronously: Create enqueues a job and the
// passage only becomes retrievable once the worker has stored its embedding.
type KnowledgePassagesService struct {
	repo   KnowledgePassagesRepository
	jobs   PassageEmbeddingEnqueuer
	logger *slog.Logger
}

// NewKnowledgePassagesService creates a new knowledge passages service.
// jobs may be nil when the job queue is disabled.
func NewKnowledgePassagesService(repo KnowledgePassagesRepository, jobs PassageEmbeddingEnqueuer, logger *slog.Logger) *KnowledgePassagesService {
	if logger == nil {
		logger = slog.Default()
	}

	return &KnowledgePassagesService{repo: repo, jobs: jobs, logger: logger}
}

// CreateKnowledgePassage stores a passage and enqueues its embedding job.
func (s *KnowledgePassagesService) CreateKnowledgePassage(ctx context.Context, req *models.CreateKnowledgePassageRequest) (*models.KnowledgePassage, error) {
	if strings.TrimSpace(req.Passage) == "" {
		return nil, apperrors.NewValidationError("passage", "passage must not be empty")
	}

	passage, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.jobs != nil {
		if err := s.jobs.InsertPassageEmbeddingJob(ctx, PassageEmbeddingArgs{PassageID: passage.ID}); err != nil {
			// The passage row exists; a later backfill picks it up.
			s.logger.Error("enqueue passage embedding failed", "passage_id", passage.ID, "error", err)
		}
	}

	return passage, nil
}

// GetKnowledgePassage retrieves a single knowledge passage by ID.
func (s *KnowledgePassagesService) GetKnowledgePassage(ctx context.Context, id uuid.UUID) (*models.KnowledgePassage, error) {
	return s.repo.GetByID(ctx, id)
}

// ListKnowledgePassages retrieves knowledge passages with optional filters.
func (s *KnowledgePassagesService) ListKnowledgePassages(ctx context.Context, filters *models.ListKnowledgePassagesFilters) (*models.ListKnowledgePassagesResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	passages, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountBySource(ctx, filters.SourceID)
	if err != nil {
		return nil, err
	}

	return &models.ListKnowledgePassagesResponse{
		Data:   passages,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// DeleteKnowledgePassage deletes a knowledge passage by ID.
func (s *KnowledgePassagesService) DeleteKnowledgePassage(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// BackfillEmbeddings enqueues embedding jobs for passages that were created
// while the queue was unavailable. Returns the number of jobs enqueued.
func (s *KnowledgePassagesService) BackfillEmbeddings(ctx context.Context, limit int) (int, error) {
	if s.jobs == nil {
		return 0, nil
	}

	ids, err := s.repo.ListUnembeddedIDs(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unembedded passages: %w", err)
	}

	enqueued := 0

	for _, id := range ids {
		if err := s.jobs.InsertPassageEmbeddingJob(ctx, PassageEmbeddingArgs{PassageID: id}); err != nil {
			return enqueued, fmt.Errorf("enqueue embedding for passage %s: %w", id, err)
		}

		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("embedding backfill enqueued", "count", enqueued)
	}

	return enqueued, nil
}
