// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/doorcheck/doorcheck/internal/ingest"
	"github.com/doorcheck/doorcheck/internal/store"
)

// Webhook handles POST /api/v1/webhook, the push endpoint for the external
// form provider. A malformed payload is the provider's fault (400); a store
// failure is ours (500) and the provider retries.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	sub, err := h.webhook.Ingest(r.Context(), r.Body)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidPayload) {
			respondError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Webhook payload could not be parsed", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Submission could not be persisted", err)
		return
	}

	respondSuccess(w, http.StatusCreated, sub)
}

// Submission handles GET /api/v1/submissions/{id}.
func (h *Handler) Submission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Submission id is required", nil)
		return
	}

	sub, err := h.webhook.Submission(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Submission not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to load submission", err)
		return
	}

	respondSuccess(w, http.StatusOK, sub)
}
