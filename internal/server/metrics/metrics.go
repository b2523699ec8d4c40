// Package metrics declares the Prometheus collectors of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophnotes_http_requests_total",
		Help: "HTTP requests served, by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gophnotes_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// TrashOperations counts trash operations by kind and outcome.
	TrashOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophnotes_trash_operations_total",
		Help: "Trash lifecycle operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// NotesPurged counts hard-deleted notes by the path that removed them.
	NotesPurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophnotes_notes_purged_total",
		Help: "Notes permanently deleted, by source (purge, empty_trash, sweep).",
	}, []string{"source"})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gophnotes_sweep_duration_seconds",
		Help:    "Duration of expiry sweeps.",
		Buckets: prometheus.DefBuckets,
	})

	AITokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gophnotes_ai_tokens_total",
		Help: "Tokens consumed by AI calls, by operation.",
	}, []string{"operation"})
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeDenied   = "denied"
	OutcomeError    = "error"
)
