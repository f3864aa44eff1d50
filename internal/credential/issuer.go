// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package credential issues scannable check-in credentials for attendees.
//
// A credential is a PNG image encoding the attendee's personal check-in URL.
// Rendering is delegated to an external QR image service; the issuer fetches
// the image and writes it under the configured output directory as
// <record-id>.png so a static file server can hand it out.
package credential

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/doorcheck/doorcheck/internal/logging"
	"github.com/doorcheck/doorcheck/internal/metrics"
)

// ErrIssuance indicates the credential image could not be produced. The
// attendee record itself may still be valid; callers decide whether the
// failure is fatal.
var ErrIssuance = errors.New("credential: issuance failed")

// Credential describes an issued check-in credential.
type Credential struct {
	// RecordID is the attendee record the credential encodes.
	RecordID string `json:"record_id"`

	// URL is the check-in link encoded in the image.
	URL string `json:"url"`

	// Path is the filesystem location of the rendered PNG.
	Path string `json:"path"`
}

// Issuer produces a credential for an attendee record.
type Issuer interface {
	Issue(ctx context.Context, recordID string) (*Credential, error)
}

// Config holds the settings for the HTTP-backed issuer.
type Config struct {
	// AppURL is the public base URL of this service; the encoded link is
	// AppURL/checkin/<record-id>.
	AppURL string

	// RenderURL is the endpoint of the QR image service. The check-in link
	// is passed in the "data" query parameter.
	RenderURL string

	// OutputDir is where rendered PNGs are written.
	OutputDir string

	// Timeout bounds a single render request.
	Timeout time.Duration
}

// HTTPIssuer renders credentials through an external QR image service,
// guarded by a circuit breaker so a slow or dead render service cannot stall
// attendee registration indefinitely.
//
// The breaker uses real time for its interval and timeout windows; unit
// tests exercise the issuer against an httptest server rather than mocking
// the breaker.
type HTTPIssuer struct {
	cfg    Config
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	name   string
}

// NewHTTPIssuer creates an issuer for the given render service.
// Breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 1 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 5 requests
func NewHTTPIssuer(cfg Config) *HTTPIssuer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cbName := "credential-renderer"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &HTTPIssuer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     cb,
		name:   cbName,
	}
}

// CheckinURL returns the check-in link for a record ID.
func (i *HTTPIssuer) CheckinURL(recordID string) string {
	return strings.TrimSuffix(i.cfg.AppURL, "/") + "/checkin/" + recordID
}

// Issue renders the credential PNG for the record and writes it to the
// output directory.
func (i *HTTPIssuer) Issue(ctx context.Context, recordID string) (*Credential, error) {
	checkinURL := i.CheckinURL(recordID)

	png, err := i.cb.Execute(func() ([]byte, error) {
		return i.render(ctx, checkinURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(i.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Render request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(i.name, "failure").Inc()
		}
		return nil, fmt.Errorf("%w: render %s: %v", ErrIssuance, recordID, err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(i.name, "success").Inc()

	path := filepath.Join(i.cfg.OutputDir, recordID+".png")
	if err := os.MkdirAll(i.cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", ErrIssuance, err)
	}
	if err := os.WriteFile(path, png, 0o640); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", ErrIssuance, path, err)
	}

	logging.Ctx(ctx).Debug().
		Str("attendee_id", recordID).
		Str("path", path).
		Msg("credential issued")

	return &Credential{RecordID: recordID, URL: checkinURL, Path: path}, nil
}

// render fetches the PNG bytes for the given link from the render service.
func (i *HTTPIssuer) render(ctx context.Context, link string) ([]byte, error) {
	u, err := url.Parse(i.cfg.RenderURL)
	if err != nil {
		return nil, fmt.Errorf("parse render url: %w", err)
	}
	q := u.Query()
	q.Set("data", link)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/png")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // 4 MB cap
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("render service returned empty body")
	}
	return body, nil
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
