// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Checkin handles GET /checkin/{id}, the target of the URL encoded in every
// credential. It always answers 204: a successful transition, a re-scan of
// an already-present attendee, and an unknown id all look the same to the
// scanner, so the entrance line never stalls on a bad credential.
func (h *Handler) Checkin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Record id is required", nil)
		return
	}

	if err := h.checkin.CheckIn(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Check-in could not be persisted", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
