// Package handlers contains the HTTP handlers for the API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/demoday/pitchhub/internal/api/response"
	"github.com/demoday/pitchhub/internal/api/validation"
	"github.com/demoday/pitchhub/internal/embeddings"
	"github.com/demoday/pitchhub/internal/generation"
	"github.com/demoday/pitchhub/internal/models"
	"github.com/demoday/pitchhub/internal/retrieval"
	"github.com/demoday/pitchhub/internal/synthesis"
)

// FeedbackService defines the interface for the pitch evaluation pipeline.
type FeedbackService interface {
	EvaluatePitch(ctx context.Context, req *models.EvaluatePitchRequest) (*models.EvaluatePitchResponse, error)
}

// FeedbackHandler handles HTTP requests for ad-hoc pitch evaluation.
type FeedbackHandler struct {
	service FeedbackService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(service FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Evaluate handles POST /v1/pitch/feedback
func (h *FeedbackHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluatePitchRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	result, err := h.service.EvaluatePitch(r.Context(), &req)
	if err != nil {
		respondPipelineError(w, r, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// respondPipelineError maps evaluation pipeline errors to status codes. Shared
// with the session evaluation endpoint.
func respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, retrieval.ErrQueryTooShort):
		response.RespondBadRequest(w, err.Error())
	case errors.Is(err, synthesis.ErrPromptTooLarge):
		response.RespondBadRequest(w, "Pitch and transcript are too large to evaluate")
	case errors.Is(err, synthesis.ErrUnparsableOutput):
		slog.ErrorContext(r.Context(), "evaluation output unparsable", "error", err)
		response.RespondBadGateway(w, "The evaluation model returned an unusable response")
	case errors.Is(err, embeddings.ErrEmbedding),
		errors.Is(err, generation.ErrGeneration),
		errors.Is(err, retrieval.ErrStore):
		slog.ErrorContext(r.Context(), "evaluation gateway failure", "error", err)
		response.RespondBadGateway(w, "An upstream service failed while evaluating the pitch")
	default:
		slog.ErrorContext(r.Context(), "evaluation failed", "error", err)
		response.RespondInternalServerError(w, "An unexpected error occurred")
	}
}
