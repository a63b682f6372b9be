package models

import "github.com/google/uuid"

// QATurn is one entry of a live Q&A transcript, ordered by Seq.
type QATurn struct {
	Role string `json:"role" validate:"required,max=50"`
	Text string `json:"text" validate:"required"`
	Seq  int    `json:"seq" validate:"min=0"`
}

// EvaluatePitchRequest represents the request to evaluate a pitch transcript.
type EvaluatePitchRequest struct {
	PitchText    string     `json:"pitch_text" validate:"required"`
	TopK         int        `json:"top_k" validate:"omitempty,min=1,max=20"`
	SourceID     *uuid.UUID `json:"source_id,omitempty"`
	QATranscript []QATurn   `json:"qa_transcript,omitempty" validate:"omitempty,dive"`
}

// EvaluatePitchResponse is the feedback produced for a pitch, plus how many
// retrieved passages grounded it.
type EvaluatePitchResponse struct {
	Feedback       string  `json:"feedback"`
	Score          float64 `json:"score"`
	ReviewRequired bool    `json:"review_required"`
	ContextsUsed   int     `json:"contexts_used"`
}

// FeedbackResult is the synthesized evaluation of a pitch.
// Score is always within [0,10] with one decimal of precision; ReviewRequired
// signals that the feedback should be human-verified before being treated as final.
type FeedbackResult struct {
	Feedback       string  `json:"feedback"`
	Score          float64 `json:"score"`
	ReviewRequired bool    `json:"review_required"`
}
