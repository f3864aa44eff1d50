// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/doorcheck/doorcheck/internal/hub"
	"github.com/doorcheck/doorcheck/internal/logging"
	"github.com/doorcheck/doorcheck/internal/metrics"
	"github.com/doorcheck/doorcheck/internal/models"
	"github.com/doorcheck/doorcheck/internal/store"
)

// ErrInvalidPayload indicates a webhook body that could not be parsed into
// a submission.
var ErrInvalidPayload = errors.New("ingest: invalid webhook payload")

// WebhookIngestor accepts form submissions pushed by the external form
// provider, reshapes them into the stored schema, and announces them to
// live observers.
type WebhookIngestor struct {
	store *store.Store
	hub   *hub.Hub
}

// NewWebhookIngestor creates a webhook ingestor.
func NewWebhookIngestor(st *store.Store, h *hub.Hub) *WebhookIngestor {
	return &WebhookIngestor{store: st, hub: h}
}

// Ingest decodes one pushed submission, persists it, and publishes it on
// the new_user channel. Unlike the batch path, a store failure here is a
// hard error: there is exactly one item and the provider retries on 5xx.
func (w *WebhookIngestor) Ingest(ctx context.Context, body io.Reader) (*models.Submission, error) {
	sub, err := DecodeSubmission(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidPayload)
	}

	if err := w.store.PutSubmission(ctx, *sub); err != nil {
		return nil, fmt.Errorf("ingest: persist submission: %w", err)
	}

	metrics.SubmissionsTotal.Inc()
	w.hub.BroadcastSubmission(sub)

	logging.Ctx(ctx).Info().
		Str("submission_id", sub.ID).
		Str("sender", sub.Sender).
		Int("responses", len(sub.Responses)).
		Msg("form submission ingested")
	return sub, nil
}

// Submission returns a previously stored submission by its form ID.
func (w *WebhookIngestor) Submission(ctx context.Context, id string) (*models.Submission, error) {
	return w.store.Submission(ctx, id)
}

// DecodeSubmission parses the provider's payload. The `responses` field
// arrives as an object mapping question key to {label, answer}; it is
// rebuilt as an ordered list of {question:{key,label}, answer} entries.
//
// Decoding walks the token stream instead of unmarshaling into a map
// because a Go map would discard the object's key order, and the stored
// representation keeps the questions in the order the provider sent them.
func DecodeSubmission(body io.Reader) (*models.Submission, error) {
	dec := json.NewDecoder(body)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var sub models.Submission
	sub.Responses = []models.SubmissionResponse{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v, want field name", keyTok)
		}

		switch key {
		case "id":
			if err := dec.Decode(&sub.ID); err != nil {
				return nil, fmt.Errorf("decode id: %w", err)
			}
		case "sender":
			if err := dec.Decode(&sub.Sender); err != nil {
				return nil, fmt.Errorf("decode sender: %w", err)
			}
		case "submittedAt":
			if err := dec.Decode(&sub.SubmittedAt); err != nil {
				return nil, fmt.Errorf("decode submittedAt: %w", err)
			}
		case "responses":
			responses, err := decodeResponses(dec)
			if err != nil {
				return nil, err
			}
			sub.Responses = responses
		default:
			// Unknown fields are tolerated and dropped.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("skip field %q: %w", key, err)
			}
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return &sub, nil
}

// decodeResponses reads the responses object in document order.
func decodeResponses(dec *json.Decoder) ([]models.SubmissionResponse, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("responses: %w", err)
	}

	responses := []models.SubmissionResponse{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("responses: read question key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("responses: unexpected token %v, want question key", keyTok)
		}

		var entry struct {
			Label  string `json:"label"`
			Answer string `json:"answer"`
		}
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("responses: decode entry %q: %w", key, err)
		}

		responses = append(responses, models.SubmissionResponse{
			Question: models.Question{Key: key, Label: entry.Label},
			Answer:   entry.Answer,
		})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("responses: %w", err)
	}
	return responses, nil
}

// expectDelim consumes one token and verifies it is the given delimiter.
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("unexpected token %v, want %q", tok, want)
	}
	return nil
}
