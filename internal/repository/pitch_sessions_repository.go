// Package repository provides data access for pitch sessions and knowledge passages.
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

	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/models"
)

const pitchSessionColumns = `id, user_id, user_name, user_email,
	startup_name, website_link, github_link, content,
	duration_seconds, language, tone,
	gcs_file_url, gcs_bucket, gcs_object_path,
	feedback, review_required, score, status,
	created_at, updated_at`

// PitchSessionsRepository handles data access for the pitch_sessions table.
type PitchSessionsRepository struct {
	db *pgxpool.Pool
}

// NewPitchSessionsRepository creates a new pitch sessions repository.
func NewPitchSessionsRepository(db *pgxpool.Pool) *PitchSessionsRepository {
	return &PitchSessionsRepository{db: db}
}

func scanPitchSession(row pgx.Row) (*models.PitchSession, error) {
	var s models.PitchSession

	err := row.Scan(
		&s.ID, &s.UserID, &s.UserName, &s.UserEmail,
		&s.StartupName, &s.WebsiteLink, &s.GithubLink, &s.Content,
		&s.DurationSeconds, &s.Language, &s.Tone,
		&s.GCSFileURL, &s.GCSBucket, &s.GCSObjectPath,
		&s.Feedback, &s.ReviewRequired, &s.Score, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Create inserts a new pitch session in the Pending state.
func (r *PitchSessionsRepository) Create(ctx context.Context, req *models.CreatePitchSessionRequest) (*models.PitchSession, error) {
	query := `
		INSERT INTO pitch_sessions (
			user_id, user_name, user_email,
			startup_name, website_link, github_link, content,
			duration_seconds, language, tone,
			gcs_file_url, gcs_bucket, gcs_object_path,
			status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + pitchSessionColumns

	session, err := scanPitchSession(r.db.QueryRow(ctx, query,
		req.UserID, req.UserName, req.UserEmail,
		req.StartupName, req.WebsiteLink, req.GithubLink, req.Content,
		req.DurationSeconds, req.Language, req.Tone,
		req.GCSFileURL, req.GCSBucket, req.GCSObjectPath,
		models.SessionStatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create pitch session: %w", err)
	}

	return session, nil
}

// GetByID retrieves a single pitch session by ID.
func (r *PitchSessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PitchSession, error) {
	query := `SELECT ` + pitchSessionColumns + ` FROM pitch_sessions WHERE id = $1`

	session, err := scanPitchSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("pitch session", "pitch session not found")
		}

		return nil, fmt.Errorf("failed to get pitch session: %w", err)
	}

	return session, nil
}

// buildSessionFilterConditions builds WHERE clause conditions and arguments from filters.
// Returns the WHERE clause (including " WHERE " prefix if conditions exist) and the args slice.
func buildSessionFilterConditions(filters *models.ListPitchSessionsFilters) (whereClause string, args []any) {
	var conditions []string

	argCount := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argCount))
		args = append(args, *filters.UserID)
		argCount++
	}

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
	}

	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args
}

// List retrieves pitch sessions with optional filters, newest first.
func (r *PitchSessionsRepository) List(ctx context.Context, filters *models.ListPitchSessionsFilters) ([]models.PitchSession, error) {
	query := `SELECT ` + pitchSessionColumns + ` FROM pitch_sessions`

	whereClause, args := buildSessionFilterConditions(filters)
	query += whereClause
	argCount := len(args) + 1

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
		return nil, fmt.Errorf("failed to list pitch sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.PitchSession{} // Initialize as empty slice, not nil

	for rows.Next() {
		session, err := scanPitchSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pitch session: %w", err)
		}

		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pitch sessions: %w", err)
	}

	return sessions, nil
}

// Count returns the number of pitch sessions matching the filters.
func (r *PitchSessionsRepository) Count(ctx context.Context, filters *models.ListPitchSessionsFilters) (int, error) {
	query := `SELECT COUNT(*) FROM pitch_sessions`

	whereClause, args := buildSessionFilterConditions(filters)
	query += whereClause

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count pitch sessions: %w", err)
	}

	return total, nil
}

// Update applies the non-nil fields of req to the session and returns the updated row.
func (r *PitchSessionsRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdatePitchSessionRequest) (*models.PitchSession, error) {
	var (
		sets []string
		args []any
	)

	argCount := 1

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if req.Feedback != nil {
		addSet("feedback", *req.Feedback)
	}

	if req.ReviewRequired != nil {
		addSet("review_required", *req.ReviewRequired)
	}

	if req.Score != nil {
		addSet("score", *req.Score)
	}

	if req.Status != nil {
		addSet("status", *req.Status)
	}

	if req.GCSFileURL != nil {
		addSet("gcs_file_url", *req.GCSFileURL)
	}

	if req.GCSBucket != nil {
		addSet("gcs_bucket", *req.GCSBucket)
	}

	if req.GCSObjectPath != nil {
		addSet("gcs_object_path", *req.GCSObjectPath)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	addSet("updated_at", time.Now())

	query := fmt.Sprintf(
		`UPDATE pitch_sessions SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argCount, pitchSessionColumns,
	)
	args = append(args, id)

	session, err := scanPitchSession(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("pitch session", "pitch session not found")
		}

		return nil, fmt.Errorf("failed to update pitch session: %w", err)
	}

	return session, nil
}

// Delete removes a pitch session by ID.
func (r *PitchSessionsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pitch_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pitch session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("pitch session", "pitch session not found")
	}

	return nil
}
