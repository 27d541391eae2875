package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bmi-client/internal/handlers"
	"bmi-client/internal/observability"
)

// NewRouter builds the local diagnostics API.
func NewRouter(src handlers.StatusSource) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)
	r.Get("/status", handlers.Status(src))

	r.Handle("/metrics", observability.PrometheusHandler())

	return r
}
