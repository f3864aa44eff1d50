// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package checkin implements the attendance state machine and the check-in
// service that drives it.
//
// An attendee is either ABSENT or PRESENT. The only transition is an edge
// from ABSENT to PRESENT, stamped with the arrival time; checking in an
// already-present attendee is a no-op, so scanning the same credential twice
// never moves the arrival timestamp.
package checkin

import (
	"time"

	"github.com/doorcheck/doorcheck/internal/models"
)

// Transition applies the check-in edge to an attendee. It returns the
// resulting record and whether a transition actually occurred. Transition is
// pure: the input is not mutated and no I/O happens here.
func Transition(a models.Attendee, now time.Time) (models.Attendee, bool) {
	if a.Status == models.StatusPresent {
		return a, false
	}

	a.Status = models.StatusPresent
	a.ArrivedAt = now.UTC().Format(time.RFC3339)
	return a, true
}
