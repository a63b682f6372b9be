// Package models defines the API and persistence data types.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a pitch session.
type SessionStatus string

const (
	SessionStatusPending      SessionStatus = "Pending"
	SessionStatusCompleted    SessionStatus = "Completed"
	SessionStatusReviewNeeded SessionStatus = "Review Needed"
)

// ValidSessionStatus reports whether s is one of the allowed status values.
func ValidSessionStatus(s SessionStatus) bool {
	switch s {
	case SessionStatusPending, SessionStatusCompleted, SessionStatusReviewNeeded:
		return true
	default:
		return false
	}
}

// PitchSession represents a recorded pitch submission and its evaluation state.
type PitchSession struct {
	ID uuid.UUID `json:"id"`

	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`

	StartupName string  `json:"startup_name"`
	WebsiteLink *string `json:"website_link,omitempty"`
	GithubLink  *string `json:"github_link,omitempty"`
	Content     *string `json:"content,omitempty"`

	DurationSeconds int    `json:"duration_seconds"`
	Language        string `json:"language"`
	Tone            string `json:"tone"`

	// Provided by the client after uploading directly to GCS.
	GCSFileURL    *string `json:"gcs_file_url,omitempty"`
	GCSBucket     *string `json:"gcs_bucket,omitempty"`
	GCSObjectPath *string `json:"gcs_object_path,omitempty"`

	Feedback       string        `json:"feedback"`
	ReviewRequired bool          `json:"review_required"`
	Score          float64       `json:"score"`
	Status         SessionStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePitchSessionRequest represents the request to create a pitch session.
type CreatePitchSessionRequest struct {
	UserID    string `json:"user_id" validate:"required,max=255"`
	UserName  string `json:"user_name" validate:"required,max=255"`
	UserEmail string `json:"user_email" validate:"required,email"`

	StartupName string  `json:"startup_name" validate:"required,max=255"`
	WebsiteLink *string `json:"website_link,omitempty" validate:"omitempty,url"`
	GithubLink  *string `json:"github_link,omitempty" validate:"omitempty,url"`
	Content     *string `json:"content,omitempty"`

	DurationSeconds int    `json:"duration_seconds" validate:"required,min=1,max=3600"`
	Language        string `json:"language" validate:"required,max=10"`
	Tone            string `json:"tone" validate:"required,max=50"`

	GCSFileURL    *string `json:"gcs_file_url,omitempty"`
	GCSBucket     *string `json:"gcs_bucket,omitempty"`
	GCSObjectPath *string `json:"gcs_object_path,omitempty"`
}

// UpdatePitchSessionRequest represents the request to update a pitch session.
// Only evaluation results and file references can be updated.
type UpdatePitchSessionRequest struct {
	Feedback       *string        `json:"feedback,omitempty"`
	ReviewRequired *bool          `json:"review_required,omitempty"`
	Score          *float64       `json:"score,omitempty" validate:"omitempty,min=0,max=10"`
	Status         *SessionStatus `json:"status,omitempty" validate:"omitempty,session_status"`

	GCSFileURL    *string `json:"gcs_file_url,omitempty"`
	GCSBucket     *string `json:"gcs_bucket,omitempty"`
	GCSObjectPath *string `json:"gcs_object_path,omitempty"`
}

// ListPitchSessionsFilters represents filters for listing pitch sessions.
type ListPitchSessionsFilters struct {
	UserID *string        `form:"user_id"`
	Status *SessionStatus `form:"status"`
	Limit  int            `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset int            `form:"offset" validate:"omitempty,min=0"`
}

// ListPitchSessionsResponse represents the response for listing pitch sessions.
type ListPitchSessionsResponse struct {
	Data   []PitchSession `json:"data"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
