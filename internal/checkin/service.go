// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doorcheck/doorcheck/internal/hub"
	"github.com/doorcheck/doorcheck/internal/logging"
	"github.com/doorcheck/doorcheck/internal/metrics"
	"github.com/doorcheck/doorcheck/internal/models"
	"github.com/doorcheck/doorcheck/internal/store"
)

// Service performs check-ins: it loads the attendee, applies the state
// machine, persists the result, and announces the transition to live
// observers.
type Service struct {
	store *store.Store
	hub   *hub.Hub
	now   func() time.Time
}

// NewService creates a check-in service backed by the given store and hub.
func NewService(st *store.Store, h *hub.Hub) *Service {
	return &Service{
		store: st,
		hub:   h,
		now:   time.Now,
	}
}

// CheckIn marks the attendee with the given record ID as present.
//
// An unknown ID is a silent success: the desk scanner gets the same answer
// whether the credential matched a record or not, so a mistyped or stale
// credential never interrupts the entrance line. Re-scanning an attendee who
// is already present is likewise a no-op and does not move their arrival
// time.
func (s *Service) CheckIn(ctx context.Context, id string) error {
	attendee, err := s.store.AttendeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.CheckinsTotal.WithLabelValues("noop").Inc()
			logging.Ctx(ctx).Debug().Str("attendee_id", id).Msg("check-in for unknown record ignored")
			return nil
		}
		metrics.CheckinsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("checkin: load attendee: %w", err)
	}

	updated, transitioned := Transition(*attendee, s.now())
	if !transitioned {
		metrics.CheckinsTotal.WithLabelValues("noop").Inc()
		logging.Ctx(ctx).Debug().
			Str("attendee_id", id).
			Str("arrived_at", attendee.ArrivedAt).
			Msg("attendee already present")
		return nil
	}

	if err := s.store.SaveAttendee(ctx, updated); err != nil {
		metrics.CheckinsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("checkin: persist transition: %w", err)
	}

	s.hub.BroadcastCheckin(&updated)

	metrics.CheckinsTotal.WithLabelValues("checked_in").Inc()
	logging.Ctx(ctx).Info().
		Str("attendee_id", id).
		Str("arrived_at", updated.ArrivedAt).
		Msg("attendee checked in")
	return nil
}

// Attendee returns the stored record for the given ID.
func (s *Service) Attendee(ctx context.Context, id string) (*models.Attendee, error) {
	return s.store.AttendeeByID(ctx, id)
}
