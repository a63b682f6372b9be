package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/demoday/pitchhub/internal/api/response"
	"github.com/demoday/pitchhub/internal/api/validation"
	"github.com/demoday/pitchhub/internal/models"
	"github.com/demoday/pitchhub/internal/storage"
)

// UploadSigner issues signed upload URLs.
type UploadSigner interface {
	SignedUploadURL(ctx context.Context, req *models.CreateSignedUploadRequest) (*models.SignedUploadResponse, error)
}

// UploadsHandler handles requests for direct-to-bucket upload URLs.
type UploadsHandler struct {
	signer UploadSigner
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(signer UploadSigner) *UploadsHandler {
	return &UploadsHandler{signer: signer}
}

// CreateSignedURL handles POST /v1/uploads/signed-url
func (h *UploadsHandler) CreateSignedURL(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSignedUploadRequest
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

	resp, err := h.signer.SignedUploadURL(r.Context(), &req)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			response.RespondBadRequest(w, "Invalid upload filename")
			return
		}
		response.RespondInternalServerError(w, "An unexpected error occurred")
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
