// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/doorcheck/doorcheck/internal/hub"
	"github.com/doorcheck/doorcheck/internal/logging"
)

// Events handles GET /api/v1/events/{channel}: it upgrades the connection
// to a WebSocket and subscribes it to the named event channel. The channel
// name must be one of the fixed set; anything else is a 400 before the
// upgrade happens.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Event streaming unavailable", nil)
		return
	}

	channel, err := hub.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_CHANNEL",
			"Channel must be one of: new_user, checkin", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := hub.NewClient(h.hub, conn, channel)
	h.hub.Register <- client
	client.Start()
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates browser origins against the configured
// CORS origins. Non-browser clients (desk scanner tooling, scripts) omit
// the Origin header entirely and are let through.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
