package handler

import (
	"net/http"
	"time"
)

// HandleHealth answers liveness probes.
//
// HTTP: GET /api/health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "habit tracker API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
