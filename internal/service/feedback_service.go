// Package service holds the business logic between HTTP handlers and data access.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/demoday/pitchhub/internal/models"
)

// Retriever turns a pitch transcript into grounding passages.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, sourceID *uuid.UUID) ([]models.ContextPassage, error)
}

// Synthesizer produces structured feedback from a pitch and its grounding passages.
type Synthesizer interface {
	Synthesize(ctx context.Context, pitch string, contexts []models.ContextPassage, transcript []models.QATurn) (models.FeedbackResult, error)
}

// FeedbackService runs the evaluation pipeline: retrieve grounding passages,
// then synthesize feedback over them.
type FeedbackService struct {
	retriever   Retriever
	synthesizer Synthesizer
	logger      *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(retriever Retriever, synthesizer Synthesizer, logger *slog.Logger) *FeedbackService {
	if logger == nil {
		logger = slog.Default()
	}

	return &FeedbackService{retriever: retriever, synthesizer: synthesizer, logger: logger}
}

// EvaluatePitch evaluates one pitch transcript end to end. Retrieval and
// synthesis errors pass through unwrapped so handlers can map sentinels to
// status codes.
func (s *FeedbackService) EvaluatePitch(ctx context.Context, req *models.EvaluatePitchRequest) (*models.EvaluatePitchResponse, error) {
	contexts, err := s.retriever.Retrieve(ctx, req.PitchText, req.TopK, req.SourceID)
	if err != nil {
		return nil, err
	}

	result, err := s.synthesizer.Synthesize(ctx, req.PitchText, contexts, req.QATranscript)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "pitch evaluated",
		"score", result.Score,
		"review_required", result.ReviewRequired,
		"contexts_used", len(contexts),
	)

	return &models.EvaluatePitchResponse{
		Feedback:       result.Feedback,
		Score:          result.Score,
		ReviewRequired: result.ReviewRequired,
		ContextsUsed:   len(contexts),
	}, nil
}
