package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// EngineProber is the slice of the extraction engine the health probe
// needs: a trivial initialization check.
type EngineProber interface {
	Version(ctx context.Context) (string, error)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	engine EngineProber
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(engine EngineProber) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status        string `json:"status"`
	EngineVersion string `json:"engine_version,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// Health handles GET /api/health. Engine misconfiguration is reported
// as unhealthy, never as a failed request.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	version, err := h.engine.Version(ctx)
	if err != nil {
		resp.Status = "unhealthy"
	} else {
		resp.EngineVersion = version
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// RootHandler serves the service descriptor.
type RootHandler struct {
	version string
}

// NewRootHandler creates the descriptor handler.
func NewRootHandler(version string) *RootHandler {
	return &RootHandler{version: version}
}

// RootResponse describes the service.
type RootResponse struct {
	App                string   `json:"app"`
	Version            string   `json:"version"`
	SupportedPlatforms []string `json:"supported_platforms"`
}

// Info handles GET /
func (h *RootHandler) Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(RootResponse{
		App:                "Social Media Downloader API",
		Version:            h.version,
		SupportedPlatforms: domain.SupportedPlatforms(),
	})
}
