// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package credential

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/doorcheck/doorcheck/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake image bytes")

func TestHTTPIssuer_Issue(t *testing.T) {
	var gotData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotData = r.URL.Query().Get("data")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(fakePNG)
	}))
	defer srv.Close()

	dir := t.TempDir()
	issuer := NewHTTPIssuer(Config{
		AppURL:    "https://desk.example.com",
		RenderURL: srv.URL,
		OutputDir: dir,
	})

	cred, err := issuer.Issue(context.Background(), "att-42")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	wantURL := "https://desk.example.com/checkin/att-42"
	if cred.URL != wantURL {
		t.Errorf("credential URL = %q, want %q", cred.URL, wantURL)
	}
	if gotData != wantURL {
		t.Errorf("render service received data = %q, want %q", gotData, wantURL)
	}
	if cred.RecordID != "att-42" {
		t.Errorf("record id = %q, want att-42", cred.RecordID)
	}

	wantPath := filepath.Join(dir, "att-42.png")
	if cred.Path != wantPath {
		t.Errorf("path = %q, want %q", cred.Path, wantPath)
	}
	written, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read written credential: %v", err)
	}
	if string(written) != string(fakePNG) {
		t.Error("written PNG does not match render service response")
	}
}

func TestHTTPIssuer_Issue_TrailingSlashAppURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(fakePNG)
	}))
	defer srv.Close()

	issuer := NewHTTPIssuer(Config{
		AppURL:    "https://desk.example.com/",
		RenderURL: srv.URL,
		OutputDir: t.TempDir(),
	})

	cred, err := issuer.Issue(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if cred.URL != "https://desk.example.com/checkin/att-1" {
		t.Errorf("credential URL = %q, double slash not collapsed", cred.URL)
	}
}

func TestHTTPIssuer_Issue_RenderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	issuer := NewHTTPIssuer(Config{
		AppURL:    "https://desk.example.com",
		RenderURL: srv.URL,
		OutputDir: t.TempDir(),
	})

	_, err := issuer.Issue(context.Background(), "att-1")
	if !errors.Is(err, ErrIssuance) {
		t.Errorf("Issue() error = %v, want ErrIssuance", err)
	}
}

func TestHTTPIssuer_Issue_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	issuer := NewHTTPIssuer(Config{
		AppURL:    "https://desk.example.com",
		RenderURL: srv.URL,
		OutputDir: t.TempDir(),
	})

	_, err := issuer.Issue(context.Background(), "att-1")
	if !errors.Is(err, ErrIssuance) {
		t.Errorf("Issue() error = %v, want ErrIssuance", err)
	}
}

func TestLinkIssuer_Issue(t *testing.T) {
	issuer := NewLinkIssuer("https://desk.example.com/")

	cred, err := issuer.Issue(context.Background(), "att-9")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if cred.URL != "https://desk.example.com/checkin/att-9" {
		t.Errorf("URL = %q", cred.URL)
	}
	if cred.Path != "" {
		t.Errorf("Path = %q, want empty", cred.Path)
	}
}
