// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package config holds the application configuration, loaded in layers:
// struct defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Checkin  CheckinConfig  `koanf:"checkin"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig holds the Badger record store settings.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// CheckinConfig holds check-in link and credential issuance settings.
type CheckinConfig struct {
	// AppURL is the public base URL of this service, used to build the
	// check-in links encoded in credentials.
	AppURL string `koanf:"app_url"`

	// RenderURL is the external QR image service endpoint. Empty disables
	// credential issuance.
	RenderURL string `koanf:"render_url"`

	// CredentialDir is where rendered credential PNGs are written.
	CredentialDir string `koanf:"credential_dir"`

	// RenderTimeout bounds a single render request.
	RenderTimeout time.Duration `koanf:"render_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for inconsistencies that would only
// surface later as confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required unless store.in_memory is set")
	}

	if c.Checkin.AppURL == "" {
		return fmt.Errorf("checkin.app_url is required (APP_URL)")
	}
	if !strings.HasPrefix(c.Checkin.AppURL, "http://") && !strings.HasPrefix(c.Checkin.AppURL, "https://") {
		return fmt.Errorf("checkin.app_url must be an http(s) URL, got %q", c.Checkin.AppURL)
	}
	if c.Checkin.RenderURL != "" && c.Checkin.CredentialDir == "" {
		return fmt.Errorf("checkin.credential_dir is required when checkin.render_url is set")
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	return nil
}
