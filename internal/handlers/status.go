package handlers

import (
	"net/http"

	"bmi-client/internal/coordinator"
)

// StatusSource exposes the state of the most recent calculate operation.
type StatusSource interface {
	Snapshot() coordinator.State
}

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Status handles GET /status
func Status(src StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if src == nil {
			WriteError(w, http.StatusServiceUnavailable, "coordinator not running")
			return
		}
		WriteJSON(w, http.StatusOK, src.Snapshot())
	}
}
