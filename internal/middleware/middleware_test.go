// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doorcheck/doorcheck/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	var seenCtx string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		seenCtx = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	header := rec.Header().Get("X-Request-ID")
	if header == "" {
		t.Fatal("X-Request-ID header not set")
	}
	if seenCtx != header {
		t.Errorf("context request id %q != header %q", seenCtx, header)
	}
}

func TestRequestID_HonorsUpstreamHeader(t *testing.T) {
	var seenLogging string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		seenLogging = logging.RequestIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id-7")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get("X-Request-ID") != "upstream-id-7" {
		t.Errorf("header = %q, want upstream-id-7", rec.Header().Get("X-Request-ID"))
	}
	if seenLogging != "upstream-id-7" {
		t.Errorf("logging context request id = %q, want upstream-id-7", seenLogging)
	}
}

func TestPrometheusMetrics_PassesThrough(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/attendees", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
