// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestAttendee_Merge(t *testing.T) {
	existing := Attendee{
		ID:     "att-1",
		Name:   "Ana",
		Email:  "a@x.com",
		Stage:  "S1",
		Status: StatusAbsent,
	}

	tests := []struct {
		name     string
		incoming Attendee
		want     Attendee
	}{
		{
			name:     "empty incoming keeps everything",
			incoming: Attendee{},
			want:     existing,
		},
		{
			name:     "status transition overlays status and arrival",
			incoming: Attendee{ID: "att-1", Status: StatusPresent, ArrivedAt: "2026-09-01T10:00:00Z"},
			want: Attendee{
				ID: "att-1", Name: "Ana", Email: "a@x.com", Stage: "S1",
				Status: StatusPresent, ArrivedAt: "2026-09-01T10:00:00Z",
			},
		},
		{
			name:     "name change keeps untouched fields",
			incoming: Attendee{Name: "Ana Maria"},
			want: Attendee{
				ID: "att-1", Name: "Ana Maria", Email: "a@x.com", Stage: "S1",
				Status: StatusAbsent,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Merge(tt.incoming); got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAttendee_JSONShape(t *testing.T) {
	a := Attendee{
		ID: "att-1", Name: "Ana", Email: "a@x.com", Stage: "S1",
		Status: StatusPresent, ArrivedAt: "2026-09-01T10:00:00Z",
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	for _, key := range []string{"id", "name", "email", "stage", "status", "arrived_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("marshaled attendee missing %q key: %s", key, data)
		}
	}
	if fields["status"] != "PRESENT" {
		t.Errorf("status = %q, want PRESENT", fields["status"])
	}
}

func TestSubmission_JSONShape(t *testing.T) {
	s := Submission{
		ID:     "f1",
		Sender: "bob",
		Responses: []SubmissionResponse{
			{Question: Question{Key: "q1", Label: "Q1"}, Answer: "yes"},
		},
		SubmittedAt: "T",
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded Submission
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if len(decoded.Responses) != 1 {
		t.Fatalf("responses length = %d, want 1", len(decoded.Responses))
	}
	r := decoded.Responses[0]
	if r.Question.Key != "q1" || r.Question.Label != "Q1" || r.Answer != "yes" {
		t.Errorf("round-tripped response = %+v", r)
	}
}
