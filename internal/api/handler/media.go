package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iconidentify/mediagrab/internal/cache"
	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/metrics"
	"github.com/iconidentify/mediagrab/internal/resolver"
	"github.com/iconidentify/mediagrab/internal/session"
)

// MediaHandler handles extraction and download requests.
type MediaHandler struct {
	resolver *resolver.Resolver
	sessions *session.Manager
	cache    *cache.Cache
	logger   *slog.Logger
}

// NewMediaHandler creates a new media handler. The cache may be nil
// (caching disabled).
func NewMediaHandler(res *resolver.Resolver, sessions *session.Manager, c *cache.Cache, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		resolver: res,
		sessions: sessions,
		cache:    c,
		logger:   logger,
	}
}

// DownloadRequest is the JSON body for extract/download endpoints.
type DownloadRequest struct {
	URL string `json:"url"`
	// Quality is accepted for compatibility but does not constrain
	// format selection.
	Quality string `json:"quality,omitempty"`
}

// FormatDownloadRequest is the JSON body for format-specific downloads.
type FormatDownloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id,omitempty"`
}

// Extract handles POST /api/extract
func (h *MediaHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	platform := domain.Classify(req.URL)

	if cached, err := h.cache.GetMetadata(r.Context(), req.URL); err != nil {
		h.logger.Warn("metadata cache read failed", "error", err)
	} else if cached != nil {
		metrics.ExtractionsTotal.WithLabelValues(string(platform), "cache_hit").Inc()
		h.writeJSON(w, http.StatusOK, cached)
		return
	}

	meta, err := h.resolver.Metadata(r.Context(), req.URL)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(string(platform), "error").Inc()
		h.writeClassifiedError(w, err, "extract failed", req.URL)
		return
	}
	metrics.ExtractionsTotal.WithLabelValues(string(platform), "success").Inc()

	if err := h.cache.SetMetadata(r.Context(), req.URL, meta); err != nil {
		h.logger.Warn("metadata cache write failed", "error", err)
	}

	h.writeJSON(w, http.StatusOK, meta)
}

// Download handles POST /api/download
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	h.stream(w, r, req.URL, "", session.MediaVideo)
}

// DownloadFormat handles POST /api/download_format
func (h *MediaHandler) DownloadFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	h.stream(w, r, req.URL, req.FormatID, session.MediaVideo)
}

// DownloadPhoto handles POST /api/download_photo
func (h *MediaHandler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	h.stream(w, r, req.URL, "", session.MediaPhoto)
}

// stream runs one download session end to end. The workspace is closed
// on every path, including mid-stream client disconnects.
func (h *MediaHandler) stream(w http.ResponseWriter, r *http.Request, url, formatID string, kind session.MediaKind) {
	platform := domain.Classify(url)
	logger := h.logger.With("url", url, "platform", platform)

	progress := func(stage session.Stage) {
		logger.Debug("download session", "stage", stage)
	}

	s, err := h.sessions.Open(r.Context(), url, formatID, kind, progress)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues(string(platform), "error").Inc()
		h.writeClassifiedError(w, err, "download failed", url)
		return
	}
	defer s.Close()

	if err := s.Stream(r.Context(), w); err != nil {
		// Headers are already out; all that is left is to log and let
		// deferred cleanup reclaim the workspace.
		metrics.DownloadsTotal.WithLabelValues(string(platform), "aborted").Inc()
		logger.Warn("stream interrupted", "error", err)
		return
	}

	metrics.DownloadsTotal.WithLabelValues(string(platform), "success").Inc()
	metrics.DownloadBytes.Observe(float64(s.Size()))
}

// writeClassifiedError translates any adapter error into its bound
// status and client-safe message. Unclassified detail is logged, never
// sent.
func (h *MediaHandler) writeClassifiedError(w http.ResponseWriter, err error, op, url string) {
	kind := domain.KindOf(err)
	metrics.ErrorsTotal.WithLabelValues(string(kind)).Inc()

	if kind == domain.KindInternal {
		h.logger.Error(op, "url", url, "error", err)
	} else {
		h.logger.Info(op, "url", url, "kind", kind, "error", err)
	}

	h.writeError(w, kind.HTTPStatus(), domain.ClientMessage(err), string(kind))
}

func (h *MediaHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *MediaHandler) writeError(w http.ResponseWriter, status int, message, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": message}
	if kind != "" {
		body["kind"] = kind
	}
	json.NewEncoder(w).Encode(body)
}
