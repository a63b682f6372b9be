package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/models"
	"github.com/demoday/pitchhub/internal/service"
)

type mockPassageStore struct {
	passage *models.KnowledgePassage
	getErr  error

	updatedID  uuid.UUID
	updatedVec []float32
	updateErr  error
}

func (m *mockPassageStore) GetByID(_ context.Context, _ uuid.UUID) (*models.KnowledgePassage, error) {
	return m.passage, m.getErr
}

func (m *mockPassageStore) UpdateEmbedding(_ context.Context, id uuid.UUID, embedding []float32) error {
	m.updatedID = id
	m.updatedVec = embedding

	return m.updateErr
}

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return m.vec, m.err
}

func (m *mockEmbedder) Dimensions() int { return len(m.vec) }

func newJob(passageID uuid.UUID, attempt, maxAttempts int) *river.Job[service.PassageEmbeddingArgs] {
	return &river.Job[service.PassageEmbeddingArgs]{
		JobRow: &rivertype.JobRow{Attempt: attempt, MaxAttempts: maxAttempts},
		Args:   service.PassageEmbeddingArgs{PassageID: passageID},
	}
}

func TestPassageEmbeddingWorker_Work(t *testing.T) {
	ctx := context.Background()
	passageID := uuid.Must(uuid.NewV7())

	t.Run("stores embedding on success", func(t *testing.T) {
		store := &mockPassageStore{passage: &models.KnowledgePassage{ID: passageID, Passage: "lead with the problem"}}
		worker := NewPassageEmbeddingWorker(store, &mockEmbedder{vec: []float32{0.1, 0.2}}, nil)

		err := worker.Work(ctx, newJob(passageID, 1, 3))
		require.NoError(t, err)
		assert.Equal(t, passageID, store.updatedID)
		assert.Equal(t, []float32{0.1, 0.2}, store.updatedVec)
	})

	t.Run("returns nil when passage not found", func(t *testing.T) {
		store := &mockPassageStore{getErr: apperrors.NewNotFoundError("knowledge passage", "")}
		worker := NewPassageEmbeddingWorker(store, &mockEmbedder{}, nil)

		err := worker.Work(ctx, newJob(passageID, 1, 3))
		assert.NoError(t, err)
		assert.Nil(t, store.updatedVec)
	})

	t.Run("propagates unexpected store errors for retry", func(t *testing.T) {
		store := &mockPassageStore{getErr: errors.New("connection refused")}
		worker := NewPassageEmbeddingWorker(store, &mockEmbedder{}, nil)

		err := worker.Work(ctx, newJob(passageID, 1, 3))
		assert.Error(t, err)
	})

	t.Run("skips empty passages", func(t *testing.T) {
		store := &mockPassageStore{passage: &models.KnowledgePassage{ID: passageID, Passage: "   "}}
		worker := NewPassageEmbeddingWorker(store, &mockEmbedder{vec: []float32{0.1}}, nil)

		err := worker.Work(ctx, newJob(passageID, 1, 3))
		require.NoError(t, err)
		assert.Nil(t, store.updatedVec)
	})

	t.Run("provider failure retries until last attempt", func(t *testing.T) {
		store := &mockPassageStore{passage: &models.KnowledgePassage{ID: passageID, Passage: "text"}}
		worker := NewPassageEmbeddingWorker(store, &mockEmbedder{err: errors.New("quota exceeded")}, nil)

		err := worker.Work(ctx, newJob(passageID, 1, 3))
		assert.Error(t, err)
	})

	t.Run("provider failure on final attempt is swallowed", func(t *testing.T) {
		store := &mockPassageStore{passage: &models.KnowledgePassage{ID: passageID, Passage: "text"}}
		worker := NewPassageEmbeddingWorker(store, &mockEmbedder{err: errors.New("quota exceeded")}, nil)

		err := worker.Work(ctx, newJob(passageID, 3, 3))
		assert.NoError(t, err)
	})

	t.Run("passage deleted mid-flight is not retried", func(t *testing.T) {
		store := &mockPassageStore{
			passage:   &models.KnowledgePassage{ID: passageID, Passage: "text"},
			updateErr: apperrors.NewNotFoundError("knowledge passage", ""),
		}
		worker := NewPassageEmbeddingWorker(store, &mockEmbedder{vec: []float32{0.1}}, nil)

		err := worker.Work(ctx, newJob(passageID, 1, 3))
		assert.NoError(t, err)
	})
}
