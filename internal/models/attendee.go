// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package models contains the data structures shared across Doorcheck:
// attendee records, form submissions, and the API response envelope.
package models

// Status is the presence state of an attendee. The only defined transition
// is StatusAbsent -> StatusPresent; the reverse is not an operation.
type Status string

const (
	// StatusAbsent is the initial state of every attendee.
	StatusAbsent Status = "ABSENT"

	// StatusPresent means the attendee has checked in at the desk.
	StatusPresent Status = "PRESENT"
)

// Attendee is a registered participant tracked through the absent/present
// lifecycle. ID and Email are both unique; ArrivedAt is non-empty exactly
// when Status is StatusPresent.
type Attendee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Stage string `json:"stage"`

	// Status is ABSENT until the first successful check-in.
	Status Status `json:"status"`

	// ArrivedAt is an RFC3339 UTC timestamp fixed at the moment of the
	// ABSENT -> PRESENT transition, empty before it.
	ArrivedAt string `json:"arrived_at"`
}

// Merge overlays the non-zero fields of incoming onto a and returns the
// result. This is the shallow-merge used by the store's update path: fields
// the caller did not set keep their persisted values.
func (a Attendee) Merge(incoming Attendee) Attendee {
	merged := a
	if incoming.ID != "" {
		merged.ID = incoming.ID
	}
	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Email != "" {
		merged.Email = incoming.Email
	}
	if incoming.Stage != "" {
		merged.Stage = incoming.Stage
	}
	if incoming.Status != "" {
		merged.Status = incoming.Status
	}
	if incoming.ArrivedAt != "" {
		merged.ArrivedAt = incoming.ArrivedAt
	}
	return merged
}
