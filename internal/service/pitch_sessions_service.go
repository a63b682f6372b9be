package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/models"
)

// PitchSessionsRepository defines the interface for pitch sessions data access.
type PitchSessionsRepository interface {
	Create(ctx context.Context, req *models.CreatePitchSessionRequest) (*models.PitchSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PitchSession, error)
	List(ctx context.Context, filters *models.ListPitchSessionsFilters) ([]models.PitchSession, error)
	Count(ctx context.Context, filters *models.ListPitchSessionsFilters) (int, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdatePitchSessionRequest) (*models.PitchSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PitchEvaluator runs the evaluation pipeline over a pitch transcript.
type PitchEvaluator interface {
	EvaluatePitch(ctx context.Context, req *models.EvaluatePitchRequest) (*models.EvaluatePitchResponse, error)
}

// PitchSessionsService handles business logic for pitch sessions.
type PitchSessionsService struct {
	repo      PitchSessionsRepository
	evaluator PitchEvaluator
}

// NewPitchSessionsService creates a new pitch sessions service.
func NewPitchSessionsService(repo PitchSessionsRepository, evaluator PitchEvaluator) *PitchSessionsService {
	return &PitchSessionsService{repo: repo, evaluator: evaluator}
}

// CreatePitchSession creates a new pitch session in the Pending state.
func (s *PitchSessionsService) CreatePitchSession(ctx context.Context, req *models.CreatePitchSessionRequest) (*models.PitchSession, error) {
	return s.repo.Create(ctx, req)
}

// GetPitchSession retrieves a single pitch session by ID.
func (s *PitchSessionsService) GetPitchSession(ctx context.Context, id uuid.UUID) (*models.PitchSession, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPitchSessions retrieves pitch sessions with optional filters.
func (s *PitchSessionsService) ListPitchSessions(ctx context.Context, filters *models.ListPitchSessionsFilters) (*models.ListPitchSessionsResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	sessions, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListPitchSessionsResponse{
		Data:   sessions,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// UpdatePitchSession updates evaluation results and file references.
func (s *PitchSessionsService) UpdatePitchSession(ctx context.Context, id uuid.UUID, req *models.UpdatePitchSessionRequest) (*models.PitchSession, error) {
	if req.Status != nil && !models.ValidSessionStatus(*req.Status) {
		return nil, apperrors.NewValidationError("status", "invalid session status: "+string(*req.Status))
	}

	if req.Score != nil && (*req.Score < 0 || *req.Score > 10) {
		return nil, apperrors.NewValidationError("score", "score must be between 0 and 10")
	}

	return s.repo.Update(ctx, id, req)
}

// DeletePitchSession deletes a pitch session by ID.
func (s *PitchSessionsService) DeletePitchSession(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// EvaluateSession runs the feedback pipeline over the stored transcript of a
// session and attaches the result. The session moves to Completed, or to
// Review Needed when the result is flagged for human review.
func (s *PitchSessionsService) EvaluateSession(ctx context.Context, id uuid.UUID) (*models.PitchSession, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Content == nil || strings.TrimSpace(*session.Content) == "" {
		return nil, apperrors.NewValidationError("content", "session has no pitch transcript to evaluate")
	}

	result, err := s.evaluator.EvaluatePitch(ctx, &models.EvaluatePitchRequest{PitchText: *session.Content})
	if err != nil {
		return nil, err
	}

	status := models.SessionStatusCompleted
	if result.ReviewRequired {
		status = models.SessionStatusReviewNeeded
	}

	return s.repo.Update(ctx, id, &models.UpdatePitchSessionRequest{
		Feedback:       &result.Feedback,
		Score:          &result.Score,
		ReviewRequired: &result.ReviewRequired,
		Status:         &status,
	})
}
