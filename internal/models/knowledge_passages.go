package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// KnowledgePassage is one passage of prior pitch material (e.g. a transcript chunk
// of an earlier demo-day video) that retrieval grounds feedback on.
type KnowledgePassage struct {
	ID        uuid.UUID       `json:"id"`
	SourceID  uuid.UUID       `json:"source_id"`
	Passage   string          `json:"passage"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Embedded  bool            `json:"embedded"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ContextPassage is a retrieved passage with its similarity score (0..1 for cosine,
// higher = more relevant), used as grounding evidence for feedback synthesis.
type ContextPassage struct {
	PassageID uuid.UUID       `json:"passage_id"`
	SourceID  uuid.UUID       `json:"source_id"`
	Passage   string          `json:"passage"`
	Score     float64         `json:"score"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// CreateKnowledgePassageRequest represents the request to create a knowledge passage.
type CreateKnowledgePassageRequest struct {
	SourceID uuid.UUID       `json:"source_id" validate:"required"`
	Passage  string          `json:"passage" validate:"required,min=1"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ListKnowledgePassagesFilters represents filters for listing knowledge passages.
type ListKnowledgePassagesFilters struct {
	SourceID *uuid.UUID `form:"source_id"`
	Limit    int        `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset   int        `form:"offset" validate:"omitempty,min=0"`
}

// ListKnowledgePassagesResponse represents the response for listing knowledge passages.
type ListKnowledgePassagesResponse struct {
	Data   []KnowledgePassage `json:"data"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
