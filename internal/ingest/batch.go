// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package ingest brings attendee records into the system: pre-registered
// batches from the box office and form submissions pushed by an external
// webhook.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/doorcheck/doorcheck/internal/credential"
	"github.com/doorcheck/doorcheck/internal/hub"
	"github.com/doorcheck/doorcheck/internal/idgen"
	"github.com/doorcheck/doorcheck/internal/logging"
	"github.com/doorcheck/doorcheck/internal/metrics"
	"github.com/doorcheck/doorcheck/internal/models"
	"github.com/doorcheck/doorcheck/internal/store"
)

// ErrDuplicateEmail indicates a creation request for an email that already
// has a record.
var ErrDuplicateEmail = errors.New("ingest: email already registered")

// CreateRequest is one attendee creation request in a batch.
type CreateRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Email string `json:"email" validate:"required,email"`
	Stage string `json:"stage" validate:"required,min=1,max=100"`
}

// Outcome is the per-item result of a batch. Exactly one of Attendee or Err
// is set.
type Outcome struct {
	Index      int
	Attendee   *models.Attendee
	Credential *credential.Credential
	Err        error
}

// BatchIngestor creates attendee records concurrently with settle-all
// semantics: every item runs to completion and reports its own outcome, and
// no item's failure aborts its siblings.
type BatchIngestor struct {
	store  *store.Store
	hub    *hub.Hub
	issuer credential.Issuer
}

// NewBatchIngestor creates a batch ingestor.
func NewBatchIngestor(st *store.Store, h *hub.Hub, issuer credential.Issuer) *BatchIngestor {
	return &BatchIngestor{store: st, hub: h, issuer: issuer}
}

// Ingest processes every request concurrently and returns one outcome per
// request, index-aligned with the input. Successful items are announced on
// the new_user channel as they complete; failed items are logged and
// reported in their outcome only.
//
// Items may complete in any order. Two requests carrying the same email can
// both pass the uniqueness check if they race; the store's last write wins.
func (b *BatchIngestor) Ingest(ctx context.Context, reqs []CreateRequest) []Outcome {
	outcomes := make([]Outcome, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req CreateRequest) {
			defer wg.Done()
			outcomes[i] = b.processItem(ctx, i, req)
		}(i, req)
	}
	wg.Wait()

	return outcomes
}

// processItem runs the creation pipeline for one request.
func (b *BatchIngestor) processItem(ctx context.Context, index int, req CreateRequest) Outcome {
	out := Outcome{Index: index}

	_, err := b.store.AttendeeByEmail(ctx, req.Email)
	switch {
	case err == nil:
		out.Err = fmt.Errorf("%w: %s", ErrDuplicateEmail, req.Email)
		metrics.BatchItemsTotal.WithLabelValues("duplicate_email").Inc()
		logging.Ctx(ctx).Debug().Int("item", index).Msg("batch item rejected, email already registered")
		return out
	case !errors.Is(err, store.ErrNotFound):
		out.Err = fmt.Errorf("ingest: uniqueness check: %w", err)
		metrics.BatchItemsTotal.WithLabelValues("store_error").Inc()
		return out
	}

	id, err := idgen.New()
	if err != nil {
		out.Err = fmt.Errorf("ingest: %w", err)
		metrics.BatchItemsTotal.WithLabelValues("store_error").Inc()
		return out
	}

	cred, err := b.issuer.Issue(ctx, id)
	if err != nil {
		out.Err = err
		metrics.BatchItemsTotal.WithLabelValues("issuance_error").Inc()
		logging.Ctx(ctx).Error().Err(err).Int("item", index).Str("attendee_id", id).Msg("credential issuance failed")
		return out
	}

	attendee := models.Attendee{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Stage:     req.Stage,
		Status:    models.StatusAbsent,
		ArrivedAt: "",
	}
	if err := b.store.SaveAttendee(ctx, attendee); err != nil {
		out.Err = fmt.Errorf("ingest: persist attendee: %w", err)
		metrics.BatchItemsTotal.WithLabelValues("store_error").Inc()
		return out
	}

	out.Attendee = &attendee
	out.Credential = cred
	metrics.BatchItemsTotal.WithLabelValues("created").Inc()

	b.hub.BroadcastNewAttendee(&attendee)
	logging.Ctx(ctx).Info().
		Int("item", index).
		Str("attendee_id", id).
		Str("stage", req.Stage).
		Msg("attendee registered")
	return out
}
