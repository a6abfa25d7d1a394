package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the HTTP router with configured routes, middleware
// and handlers: generation endpoints, catalogs, health check and the
// Prometheus metrics endpoint.
func NewRouter(service GenerationService, tasks TaskReader, artifacts ArtifactResolver, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	h := NewVideoHandler(service, tasks, artifacts, logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Get("/status/{taskID}", h.Status)
		r.Get("/videos/{videoID}", h.Video)
		r.Get("/styles", h.Styles)
		r.Get("/voices", h.Voices)
		r.Get("/avatars", h.Avatars)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "AI Video Generator API",
			"status":  "running",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
