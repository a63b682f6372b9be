package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/models"
)

// KnowledgePassagesRepository handles data access for the knowledge_passages table.
// Embeddings are stored as halfvec (2 bytes per dimension); pgvector-go converts
// float32 to float16 when encoding.
type KnowledgePassagesRepository struct {
	db *pgxpool.Pool
}

// NewKnowledgePassagesRepository creates a new knowledge passages repository.
func NewKnowledgePassagesRepository(db *pgxpool.Pool) *KnowledgePassagesRepository {
	return &KnowledgePassagesRepository{db: db}
}

const knowledgePassageColumns = `id, source_id, passage, metadata,
	embedding IS NOT NULL AS embedded, created_at, updated_at`

func scanKnowledgePassage(row pgx.Row) (*models.KnowledgePassage, error) {
	var p models.KnowledgePassage

	err := row.Scan(
		&p.ID, &p.SourceID, &p.Passage, &p.Metadata,
		&p.Embedded, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Create inserts a new passage without an embedding; the embedding is written
// later by the passage embedding worker.
func (r *KnowledgePassagesRepository) Create(ctx context.Context, req *models.CreateKnowledgePassageRequest) (*models.KnowledgePassage, error) {
	query := `
		INSERT INTO knowledge_passages (source_id, passage, metadata)
		VALUES ($1, $2, $3)
		RETURNING ` + knowledgePassageColumns

	passage, err := scanKnowledgePassage(r.db.QueryRow(ctx, query, req.SourceID, req.Passage, req.Metadata))
	if err != nil {
		return nil, fmt.Errorf("failed to create knowledge passage: %w", err)
	}

	return passage, nil
}

// GetByID retrieves a single knowledge passage by ID.
func (r *KnowledgePassagesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgePassage, error) {
	query := `SELECT ` + knowledgePassageColumns + ` FROM knowledge_passages WHERE id = $1`

	passage, err := scanKnowledgePassage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("knowledge passage", "knowledge passage not found")
		}

		return nil, fmt.Errorf("failed to get knowledge passage: %w", err)
	}

	return passage, nil
}

// List retrieves knowledge passages, newest first, optionally scoped to one source.
func (r *KnowledgePassagesRepository) List(ctx context.Context, filters *models.ListKnowledgePassagesFilters) ([]models.KnowledgePassage, error) {
	query := `SELECT ` + knowledgePassageColumns + ` FROM knowledge_passages`

	var (
		conditions []string
		args       []any
	)

	argCount := 1

	if filters.SourceID != nil {
		conditions = append(conditions, fmt.Sprintf("source_id = $%d", argCount))
		args = append(args, *filters.SourceID)
		argCount++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)

		args = append(args, filters.Limit)
		argCount++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)

		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge passages: %w", err)
	}
	defer rows.Close()

	passages := []models.KnowledgePassage{} // Initialize as empty slice, not nil

	for rows.Next() {
		passage, err := scanKnowledgePassage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge passage: %w", err)
		}

		passages = append(passages, *passage)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating knowledge passages: %w", err)
	}

	return passages, nil
}

// CountBySource returns the number of passages matching the filters.
func (r *KnowledgePassagesRepository) CountBySource(ctx context.Context, sourceID *uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM knowledge_passages`

	var args []any
	if sourceID != nil {
		query += ` WHERE source_id = $1`

		args = append(args, *sourceID)
	}

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count knowledge passages: %w", err)
	}

	return total, nil
}

// UpdateEmbedding stores the embedding for a passage.
func (r *KnowledgePassagesRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	vec := pgvector.NewHalfVector(embedding)

	tag, err := r.db.Exec(ctx,
		`UPDATE knowledge_passages SET embedding = $1, updated_at = $2 WHERE id = $3`,
		vec, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update passage embedding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("knowledge passage", "knowledge passage not found")
	}

	return nil
}

// ListUnembeddedIDs returns IDs of passages with non-empty text and no stored
// embedding (so they still need an embedding job).
func (r *KnowledgePassagesRepository) ListUnembeddedIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM knowledge_passages
		WHERE embedding IS NULL AND trim(passage) != ''
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unembedded passage ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan passage id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unembedded ids: %w", err)
	}

	return ids, nil
}

// Delete removes a knowledge passage by ID.
func (r *KnowledgePassagesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM knowledge_passages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete knowledge passage: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("knowledge passage", "knowledge passage not found")
	}

	return nil
}

// NearestPassages returns the embedded passages closest to queryEmbedding with
// their similarity scores (0..1). Uses cosine distance (<=>); score = 1 - distance.
// sourceID, when non-nil, scopes the search to one source's passages.
func (r *KnowledgePassagesRepository) NearestPassages(
	ctx context.Context, queryEmbedding []float32, topK int, sourceID *uuid.UUID,
) ([]models.ContextPassage, error) {
	queryVec := pgvector.NewHalfVector(queryEmbedding)

	var (
		rows pgx.Rows
		err  error
	)

	if sourceID == nil {
		rows, err = r.db.Query(ctx, `
			SELECT id, source_id, passage, metadata, (1 - (embedding <=> $1)) AS score
			FROM knowledge_passages
			WHERE embedding IS NOT NULL
			ORDER BY embedding <=> $1
			LIMIT $2`, queryVec, topK)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, source_id, passage, metadata, (1 - (embedding <=> $1)) AS score
			FROM knowledge_passages
			WHERE embedding IS NOT NULL AND source_id = $2
			ORDER BY embedding <=> $1
			LIMIT $3`, queryVec, *sourceID, topK)
	}

	if err != nil {
		return nil, fmt.Errorf("nearest passages: %w", err)
	}

	defer rows.Close()

	var results []models.ContextPassage

	for rows.Next() {
		var row models.ContextPassage

		if err := rows.Scan(&row.PassageID, &row.SourceID, &row.Passage, &row.Metadata, &row.Score); err != nil {
			return nil, fmt.Errorf("scan passage with score: %w", err)
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nearest: %w", err)
	}

	return results, nil
}
