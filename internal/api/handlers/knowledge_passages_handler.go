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

// KnowledgePassagesService defines the interface for knowledge passages business logic.
type KnowledgePassagesService interface {
	CreateKnowledgePassage(ctx context.Context, req *models.CreateKnowledgePassageRequest) (*models.KnowledgePassage, error)
	GetKnowledgePassage(ctx context.Context, id uuid.UUID) (*models.KnowledgePassage, error)
	ListKnowledgePassages(ctx context.Context, filters *models.ListKnowledgePassagesFilters) (*models.ListKnowledgePassagesResponse, error)
	DeleteKnowledgePassage(ctx context.Context, id uuid.UUID) error
}

// KnowledgePassagesHandler handles HTTP requests for knowledge passages.
type KnowledgePassagesHandler struct {
	service KnowledgePassagesService
}

// NewKnowledgePassagesHandler creates a new knowledge passages handler.
func NewKnowledgePassagesHandler(service KnowledgePassagesService) *KnowledgePassagesHandler {
	return &KnowledgePassagesHandler{service: service}
}

// Create handles POST /v1/knowledge-passages
func (h *KnowledgePassagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateKnowledgePassageRequest
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

	passage, err := h.service.CreateKnowledgePassage(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			response.RespondBadRequest(w, err.Error())
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusCreated, passage)
}

// passageID parses the {id} path value, writing a 400 on failure.
func passageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		response.RespondBadRequest(w, "Knowledge passage ID is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid UUID format")
		return uuid.Nil, false
	}

	return id, true
}

// Get handles GET /v1/knowledge-passages/{id}
func (h *KnowledgePassagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := passageID(w, r)
	if !ok {
		return
	}

	passage, err := h.service.GetKnowledgePassage(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Knowledge passage not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, passage)
}

// List handles GET /v1/knowledge-passages
func (h *KnowledgePassagesHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &models.ListKnowledgePassagesFilters{}

	if err := validation.ValidateAndDecodeQueryParams(r, filters); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	result, err := h.service.ListKnowledgePassages(r.Context(), filters)
	if err != nil {
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/knowledge-passages/{id}
func (h *KnowledgePassagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := passageID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteKnowledgePassage(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Knowledge passage not found")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
