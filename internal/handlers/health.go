package handlers

import (
	"net/http"

	"github.com/bobmcallan/free-apis-mcp/internal/catalog"
	"github.com/bobmcallan/free-apis-mcp/internal/common"
)

// HealthHandler handles health check requests. The server is healthy
// only while its catalog file can be loaded.
type HealthHandler struct {
	catalog catalog.Source
	logger  *common.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(src catalog.Source, logger *common.Logger) *HealthHandler {
	return &HealthHandler{catalog: src, logger: logger}
}

// healthResponse is the GET /api/health body.
type healthResponse struct {
	Status     string `json:"status"`
	Categories int    `json:"categories"`
	Error      string `json:"error,omitempty"`
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireRead(w, r) {
		return
	}

	categories, err := h.catalog.Load(r.Context())
	if err != nil {
		h.logger.Warn().Str("error", err.Error()).Msg("health check: catalog unavailable")
		WriteJSON(w, r, http.StatusServiceUnavailable, healthResponse{
			Status: "degraded",
			Error:  err.Error(),
		})
		return
	}

	WriteJSON(w, r, http.StatusOK, healthResponse{
		Status:     "ok",
		Categories: len(categories),
	})
}
