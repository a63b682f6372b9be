package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/demoday/pitchhub/internal/api/response"
	"github.com/demoday/pitchhub/internal/api/validation"
	"github.com/demoday/pitchhub/internal/apperrors"
	"github.com/demoday/pitchhub/internal/models"
)

// PitchSessionsService defines the interface for pitch sessions business logic.
type PitchSessionsService interface {
	CreatePitchSession(ctx context.Context, req *models.CreatePitchSessionRequest) (*models.PitchSession, error)
	GetPitchSession(ctx context.Context, id uuid.UUID) (*models.PitchSession, error)
	ListPitchSessions(ctx context.Context, filters *models.ListPitchSessionsFilters) (*models.ListPitchSessionsResponse, error)
	UpdatePitchSession(ctx context.Context, id uuid.UUID, req *models.UpdatePitchSessionRequest) (*models.PitchSession, error)
	DeletePitchSession(ctx context.Context, id uuid.UUID) error
	EvaluateSession(ctx context.Context, id uuid.UUID) (*models.PitchSession, error)
}

// PitchSessionsHandler handles HTTP requests for pitch sessions.
type PitchSessionsHandler struct {
	service PitchSessionsService
}

// NewPitchSessionsHandler creates a new pitch sessions handler.
func NewPitchSessionsHandler(service PitchSessionsService) *PitchSessionsHandler {
	return &PitchSessionsHandler{service: service}
}

// Create handles POST /v1/pitch-sessions
func (h *PitchSessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePitchSessionRequest
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

	session, err := h.service.CreatePitchSession(r.Context(), &req)
	if err != nil {
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusCreated, session)
}

// sessionID parses the {id} path value, writing a 400 on failure.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		response.RespondBadRequest(w, "Pitch session ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid UUID format")
		return uuid.Nil, false
	}

	return id, true
}

// Get handles GET /v1/pitch-sessions/{id}
func (h *PitchSessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.service.GetPitchSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Pitch session not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, session)
}

// List handles GET /v1/pitch-sessions
func (h *PitchSessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &models.ListPitchSessionsFilters{}

	if err := validation.ValidateAndDecodeQueryParams(r, filters); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	result, err := h.service.ListPitchSessions(r.Context(), filters)
	if err != nil {
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Update handles PATCH /v1/pitch-sessions/{id}
func (h *PitchSessionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req models.UpdatePitchSessionRequest
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

	session, err := h.service.UpdatePitchSession(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			response.RespondNotFound(w, "Pitch session not found")
		case errors.Is(err, apperrors.ErrValidation):
			response.RespondBadRequest(w, err.Error())
		default:
			response.RespondInternalServerError(w, "An unexpected error occurred")
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /v1/pitch-sessions/{id}
func (h *PitchSessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePitchSession(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Pitch session not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Evaluate handles POST /v1/pitch-sessions/{id}/feedback
func (h *PitchSessionsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.service.EvaluateSession(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			response.RespondNotFound(w, "Pitch session not found")
		case errors.Is(err, apperrors.ErrValidation):
			response.RespondUnprocessableEntity(w, err.Error())
		default:
			respondPipelineError(w, r, err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, session)
}
