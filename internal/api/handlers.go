// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package api

import (
	"time"

	"github.com/doorcheck/doorcheck/internal/checkin"
	"github.com/doorcheck/doorcheck/internal/config"
	"github.com/doorcheck/doorcheck/internal/hub"
	"github.com/doorcheck/doorcheck/internal/ingest"
	"github.com/doorcheck/doorcheck/internal/store"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: shared response helpers
//   - handlers_attendees.go: batch registration and attendee lookup
//   - handlers_checkin.go: the scan endpoint
//   - handlers_submissions.go: form webhook and submission lookup
//   - handlers_events.go: WebSocket event streaming
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	store     *store.Store
	hub       *hub.Hub
	checkin   *checkin.Service
	batch     *ingest.BatchIngestor
	webhook   *ingest.WebhookIngestor
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler with all required dependencies.
func NewHandler(st *store.Store, h *hub.Hub, checkinSvc *checkin.Service, batch *ingest.BatchIngestor, webhook *ingest.WebhookIngestor, cfg *config.Config) *Handler {
	return &Handler{
		store:     st,
		hub:       h,
		checkin:   checkinSvc,
		batch:     batch,
		webhook:   webhook,
		config:    cfg,
		startTime: time.Now(),
	}
}
