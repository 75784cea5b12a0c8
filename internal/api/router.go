package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iconidentify/mediagrab/internal/api/handler"
	mw "github.com/iconidentify/mediagrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
// requestTimeout bounds every request end to end, downloads included.
func NewRouter(
	mediaHandler *handler.MediaHandler,
	healthHandler *handler.HealthHandler,
	rootHandler *handler.RootHandler,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Metrics)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(requestTimeout))

	// CORS for the mobile app
	r.Use(mw.CORS)

	r.Get("/", rootHandler.Info)
	r.Get("/api/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", mediaHandler.Extract)
		r.Post("/download", mediaHandler.Download)
		r.Post("/download_format", mediaHandler.DownloadFormat)
		r.Post("/download_photo", mediaHandler.DownloadPhoto)
	})

	return r
}
