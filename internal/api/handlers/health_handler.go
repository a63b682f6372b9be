package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/demoday/pitchhub/internal/api/response"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler. db may be nil to skip the
// database check.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

const healthCheckTimeout = 2 * time.Second

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			response.RespondError(w, http.StatusServiceUnavailable, "Service Unavailable", "database unreachable")
			return
		}
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
