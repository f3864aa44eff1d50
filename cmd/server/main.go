// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package main is the entry point for the Doorcheck server.
//
// Doorcheck is a check-in desk for live events: it ingests attendee
// batches and form-provider webhooks, issues QR check-in credentials, and
// streams attendance updates to connected dashboards over WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: load settings from environment variables and config files (Koanf v2)
//  2. Store: open the BadgerDB attendee and submission store
//  3. Notification hub: real-time fan-out to dashboard clients
//  4. Credential issuer: QR rendering via an external image service (optional)
//  5. Ingestion: batch attendee creation and webhook submission intake
//  6. HTTP server: REST API plus the WebSocket event stream
//
// All long-running components are managed by a suture supervisor tree. A
// crash in the hub restarts the hub without tearing down the HTTP server.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HOST, HTTP_PORT, STORE_PATH, APP_URL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// QR credential rendering is optional. When QR_RENDER_URL is unset,
// attendees are created with their check-in link but no image is written.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Disconnects WebSocket observers and closes the store
//
// # Example Usage
//
// Development, in-memory store:
//
//	export STORE_IN_MEMORY=true
//	export APP_URL=http://localhost:3333
//	./doorcheck
//
// Production with QR rendering:
//
//	export STORE_PATH=/data/doorcheck
//	export APP_URL=https://checkin.example.com
//	export QR_RENDER_URL=https://qr.example.com/render
//	export CREDENTIAL_DIR=/data/credentials
//	./doorcheck
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doorcheck/doorcheck/internal/api"
	"github.com/doorcheck/doorcheck/internal/checkin"
	"github.com/doorcheck/doorcheck/internal/config"
	"github.com/doorcheck/doorcheck/internal/credential"
	"github.com/doorcheck/doorcheck/internal/hub"
	"github.com/doorcheck/doorcheck/internal/ingest"
	"github.com/doorcheck/doorcheck/internal/logging"
	"github.com/doorcheck/doorcheck/internal/store"
	"github.com/doorcheck/doorcheck/internal/supervisor"
	"github.com/doorcheck/doorcheck/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Doorcheck with supervisor tree")
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Bool("in_memory", cfg.Store.InMemory).
		Str("app_url", cfg.Checkin.AppURL).
		Msg("Configuration loaded")

	st, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Store opened successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Notification hub must exist before the ingestors so they can
	// broadcast; the supervisor starts its event loop later.
	notifyHub := hub.NewHub()

	// Credential issuance is optional. Without a render service the
	// attendees still get their check-in link.
	var issuer credential.Issuer
	if cfg.Checkin.RenderURL != "" {
		issuer = credential.NewHTTPIssuer(credential.Config{
			AppURL:    cfg.Checkin.AppURL,
			RenderURL: cfg.Checkin.RenderURL,
			OutputDir: cfg.Checkin.CredentialDir,
			Timeout:   cfg.Checkin.RenderTimeout,
		})
		logging.Info().
			Str("render_url", cfg.Checkin.RenderURL).
			Str("credential_dir", cfg.Checkin.CredentialDir).
			Msg("QR credential rendering enabled")
	} else {
		issuer = credential.NewLinkIssuer(cfg.Checkin.AppURL)
		logging.Info().Msg("QR credential rendering disabled (QR_RENDER_URL not set)")
	}

	checkinSvc := checkin.NewService(st, notifyHub)
	batchIngestor := ingest.NewBatchIngestor(st, notifyHub, issuer)
	webhookIngestor := ingest.NewWebhookIngestor(st, notifyHub)

	handler := api.NewHandler(st, notifyHub, checkinSvc, batchIngestor, webhookIngestor, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg)))

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
		logging.Warn().Msg("This should only be used for local development and tests!")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter.
	// This bridges zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	tree := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewHubService(notifyHub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
