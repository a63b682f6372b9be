package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/models"
)

type mockSessionsRepo struct {
	session *models.PitchSession
	getErr  error

	updatedID  uuid.UUID
	updatedReq *models.UpdatePitchSessionRequest
}

func (m *mockSessionsRepo) Create(_ context.Context, _ *models.CreatePitchSessionRequest) (*models.PitchSession, error) {
	return m.session, nil
}

func (m *mockSessionsRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.PitchSession, error) {
	return m.session, m.getErr
}

func (m *mockSessionsRepo) List(_ context.Context, _ *models.ListPitchSessionsFilters) ([]models.PitchSession, error) {
	return []models.PitchSession{}, nil
}

func (m *mockSessionsRepo) Count(_ context.Context, _ *models.ListPitchSessionsFilters) (int, error) {
	return 0, nil
}

func (m *mockSessionsRepo) Update(_ context.Context, id uuid.UUID, req *models.UpdatePitchSessionRequest) (*models.PitchSession, error) {
	m.updatedID = id
	m.updatedReq = req

	updated := *m.session
	if req.Status != nil {
		updated.Status = *req.Status
	}

	return &updated, nil
}

func (m *mockSessionsRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type mockEvaluator struct {
	resp *models.EvaluatePitchResponse
	err  error

	gotPitch string
}

func (m *mockEvaluator) EvaluatePitch(_ context.Context, req *models.EvaluatePitchRequest) (*models.EvaluatePitchResponse, error) {
	m.gotPitch = req.PitchText

	return m.resp, m.err
}

func strPtr(s string) *string { return &s }

func TestPitchSessionsService_UpdatePitchSession(t *testing.T) {
	t.Run("rejects invalid status", func(t *testing.T) {
		svc := NewPitchSessionsService(&mockSessionsRepo{}, nil)
		bad := models.SessionStatus("Archived")

		_, err := svc.UpdatePitchSession(context.Background(), uuid.New(), &models.UpdatePitchSessionRequest{Status: &bad})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("rejects out-of-range score", func(t *testing.T) {
		svc := NewPitchSessionsService(&mockSessionsRepo{}, nil)
		score := 10.5

		_, err := svc.UpdatePitchSession(context.Background(), uuid.New(), &models.UpdatePitchSessionRequest{Score: &score})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("passes valid update to repository", func(t *testing.T) {
		repo := &mockSessionsRepo{session: &models.PitchSession{Status: models.SessionStatusPending}}
		svc := NewPitchSessionsService(repo, nil)
		status := models.SessionStatusCompleted

		_, err := svc.UpdatePitchSession(context.Background(), uuid.New(), &models.UpdatePitchSessionRequest{Status: &status})
		require.NoError(t, err)
		require.NotNil(t, repo.updatedReq)
		assert.Equal(t, status, *repo.updatedReq.Status)
	})
}

func TestPitchSessionsService_EvaluateSession(t *testing.T) {
	sessionID := uuid.Must(uuid.NewV7())

	t.Run("missing session propagates not found", func(t *testing.T) {
		repo := &mockSessionsRepo{getErr: apperrors.NewNotFoundError("pitch session", "")}
		svc := NewPitchSessionsService(repo, &mockEvaluator{})

		_, err := svc.EvaluateSession(context.Background(), sessionID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("session without transcript is a validation error", func(t *testing.T) {
		repo := &mockSessionsRepo{session: &models.PitchSession{ID: sessionID, Content: strPtr("  ")}}
		svc := NewPitchSessionsService(repo, &mockEvaluator{})

		_, err := svc.EvaluateSession(context.Background(), sessionID)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("clean result completes the session", func(t *testing.T) {
		repo := &mockSessionsRepo{session: &models.PitchSession{
			ID:      sessionID,
			Content: strPtr("We are building an AI-powered inventory system for small retailers."),
			Status:  models.SessionStatusPending,
		}}
		evaluator := &mockEvaluator{resp: &models.EvaluatePitchResponse{
			Feedback: "Strong delivery.", Score: 8.1, ReviewRequired: false,
		}}
		svc := NewPitchSessionsService(repo, evaluator)

		updated, err := svc.EvaluateSession(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, *repo.session.Content, evaluator.gotPitch)
		assert.Equal(t, models.SessionStatusCompleted, updated.Status)
		require.NotNil(t, repo.updatedReq)
		assert.Equal(t, "Strong delivery.", *repo.updatedReq.Feedback)
		assert.InDelta(t, 8.1, *repo.updatedReq.Score, 1e-9)
	})

	t.Run("flagged result moves session to review needed", func(t *testing.T) {
		repo := &mockSessionsRepo{session: &models.PitchSession{
			ID:      sessionID,
			Content: strPtr("We are building an AI-powered inventory system for small retailers."),
			Status:  models.SessionStatusPending,
		}}
		evaluator := &mockEvaluator{resp: &models.EvaluatePitchResponse{
			Feedback: "Could not verify claims.", Score: 0, ReviewRequired: true,
		}}
		svc := NewPitchSessionsService(repo, evaluator)

		updated, err := svc.EvaluateSession(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusReviewNeeded, updated.Status)
	})
}
