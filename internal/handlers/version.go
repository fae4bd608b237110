package handlers

import (
	"net/http"

	"github.com/bobmcallan/free-apis-mcp/internal/config"
)

// VersionHandler handles version information requests.
type VersionHandler struct{}

// NewVersionHandler creates a new version handler.
func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// ServeHTTP handles GET /api/version.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireRead(w, r) {
		return
	}

	WriteJSON(w, r, http.StatusOK, map[string]string{
		"version":    config.GetVersion(),
		"build":      config.GetBuild(),
		"git_commit": config.GetGitCommit(),
	})
}
