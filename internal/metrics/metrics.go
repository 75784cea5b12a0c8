package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediagrab_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediagrab_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ExtractionsTotal counts metadata extractions by platform and outcome.
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediagrab_extractions_total",
			Help: "Total number of metadata extractions",
		},
		[]string{"platform", "outcome"},
	)

	// DownloadsTotal counts download sessions by platform and outcome.
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediagrab_downloads_total",
			Help: "Total number of download sessions",
		},
		[]string{"platform", "outcome"},
	)

	// DownloadBytes observes the size of streamed files.
	DownloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediagrab_download_bytes",
			Help:    "Size of streamed media files in bytes",
			Buckets: prometheus.ExponentialBuckets(256*1024, 4, 10), // 256KB to ~64GB
		},
	)

	// ErrorsTotal counts classified errors by kind.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediagrab_errors_total",
			Help: "Total number of classified errors returned to clients",
		},
		[]string{"kind"},
	)
)
