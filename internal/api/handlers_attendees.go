// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/doorcheck/doorcheck/internal/ingest"
	"github.com/doorcheck/doorcheck/internal/store"
	"github.com/doorcheck/doorcheck/internal/validation"
)

// maxBatchSize caps how many creation requests one call may carry.
const maxBatchSize = 500

// batchItemResult is the per-item outcome reported to the caller.
type batchItemResult struct {
	Index    int         `json:"index"`
	Status   string      `json:"status"`
	Attendee interface{} `json:"attendee,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// CreateAttendees handles POST /api/v1/attendees. The body is a JSON array
// of creation requests; every item settles independently and the response
// reports one outcome per item, index-aligned with the input.
func (h *Handler) CreateAttendees(w http.ResponseWriter, r *http.Request) {
	var reqs []ingest.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be a JSON array of creation requests", err)
		return
	}
	if len(reqs) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Batch must contain at least one item", nil)
		return
	}
	if len(reqs) > maxBatchSize {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Batch exceeds maximum size of %d items", maxBatchSize), nil)
		return
	}

	for i, req := range reqs {
		if verr := validation.ValidateStruct(&req); verr != nil {
			apiErr := verr.ToAPIError()
			respondError(w, http.StatusBadRequest, apiErr.Code,
				fmt.Sprintf("item %d: %s", i, apiErr.Message), nil)
			return
		}
	}

	outcomes := h.batch.Ingest(r.Context(), reqs)

	results := make([]batchItemResult, len(outcomes))
	for i, out := range outcomes {
		results[i] = batchItemResult{Index: out.Index}
		switch {
		case out.Err == nil:
			results[i].Status = "created"
			results[i].Attendee = out.Attendee
		case errors.Is(out.Err, ingest.ErrDuplicateEmail):
			results[i].Status = "duplicate_email"
			results[i].Error = "email already registered"
		default:
			results[i].Status = "failed"
			results[i].Error = out.Err.Error()
		}
	}

	respondSuccess(w, http.StatusOK, results)
}

// Attendee handles GET /api/v1/attendees/{id}.
func (h *Handler) Attendee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Attendee id is required", nil)
		return
	}

	attendee, err := h.checkin.Attendee(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Attendee not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to load attendee", err)
		return
	}

	respondSuccess(w, http.StatusOK, attendee)
}
