// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package metrics provides Prometheus instrumentation for the check-in
// service: HTTP request latency, live observer connections, broadcast
// health, ingestion outcomes, and the credential issuer's circuit breaker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doorcheck_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorcheck_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doorcheck_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Hub metrics
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doorcheck_websocket_clients",
			Help: "Current number of connected observer clients across all channels",
		},
	)

	BroadcastsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorcheck_broadcasts_dropped_total",
			Help: "Total number of broadcast messages dropped because the buffer was full",
		},
		[]string{"channel"},
	)

	// Ingestion metrics
	BatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorcheck_batch_items_total",
			Help: "Total number of batch-ingested items by outcome",
		},
		[]string{"outcome"}, // "created", "duplicate_email", "issuance_error", "store_error"
	)

	CheckinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorcheck_checkins_total",
			Help: "Total number of check-in scans by result",
		},
		[]string{"result"}, // "checked_in", "noop", "error"
	)

	SubmissionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doorcheck_submissions_total",
			Help: "Total number of webhook form submissions stored",
		},
	)

	// Circuit breaker metrics (credential render service)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "doorcheck_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorcheck_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doorcheck_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
