// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package api provides the HTTP surface: batch registration, the check-in
// scan endpoint, the form webhook, WebSocket event streaming, and health
// probes, routed with Chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doorcheck/doorcheck/internal/middleware"
)

// Router wires handlers and middleware into a Chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	return &Router{handler: handler, chiMiddleware: mw}
}

// chiMW adapts http.HandlerFunc middleware to Chi's signature.
func chiMW(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.With(chiMW(middleware.PrometheusMetrics)).Post("/attendees", router.handler.CreateAttendees)
		r.With(chiMW(middleware.PrometheusMetrics)).Get("/attendees/{id}", router.handler.Attendee)
		r.With(chiMW(middleware.PrometheusMetrics)).Post("/webhook", router.handler.Webhook)
		r.With(chiMW(middleware.PrometheusMetrics)).Get("/submissions/{id}", router.handler.Submission)

		// The upgrade path hijacks the connection, so it skips the
		// metrics response wrapper.
		r.Get("/events/{channel}", router.handler.Events)
	})

	// Scan endpoint lives outside /api/v1: its URL is printed into
	// credentials and kept short.
	r.Route("/checkin", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitScan())
		r.Use(APISecurityHeaders())
		r.With(chiMW(middleware.PrometheusMetrics)).Get("/{id}", router.handler.Checkin)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
