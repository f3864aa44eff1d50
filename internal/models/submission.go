// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package models

// Submission is a form submission pushed by the external form provider,
// reshaped from the provider's label-keyed mapping into an ordered list of
// question/answer pairs. Submissions are append-only: created once on
// webhook receipt and never mutated.
type Submission struct {
	ID          string               `json:"id"`
	Sender      string               `json:"sender"`
	Responses   []SubmissionResponse `json:"responses"`
	SubmittedAt string               `json:"submittedAt"`
}

// SubmissionResponse is one answered question, in the order the provider
// sent it.
type SubmissionResponse struct {
	Question Question `json:"question"`
	Answer   string   `json:"answer"`
}

// Question identifies a form question by its provider key and display label.
type Question struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
