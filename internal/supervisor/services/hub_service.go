// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package services

import (
	"context"
)

// ContextHub matches *hub.Hub's RunWithContext method without importing the
// hub package.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService wraps the notification hub as a supervised service. The hub's
// RunWithContext already follows the suture.Service pattern, so this
// wrapper delegates and names it for logging.
type HubService struct {
	hub  ContextHub
	name string
}

// NewHubService creates a hub service wrapper.
func NewHubService(h ContextHub) *HubService {
	return &HubService{
		hub:  h,
		name: "notification-hub",
	}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *HubService) String() string {
	return s.name
}
