package handlers

import (
	"encoding/json"
	"net/http"
)

// allowRead is the Allow header of every endpoint in this package.
const allowRead = "GET, HEAD"

// RequireRead admits GET and HEAD, the only methods the probe endpoints
// serve. Other methods get a 405 carrying an Allow header.
func RequireRead(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return true
	}
	w.Header().Set("Allow", allowRead)
	WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// WriteJSON writes v as the response. Health follows the catalog file, so
// responses are never cached. HEAD gets the headers only.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return nil
	}
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes {"status": "error", "error": message}.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) error {
	return WriteJSON(w, r, status, struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}{"error", message})
}
