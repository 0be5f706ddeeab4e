package handler

import "net/http"

var statusOK = map[string]string{"status": "ok"}

// handleHealth answers GET / so load balancers and the CLI can probe the
// server.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, statusOK)
}
