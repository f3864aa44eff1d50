// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package validation

import (
	"strings"
	"testing"
)

type createAttendeeRequest struct {
	Name  string `validate:"required,min=1,max=200"`
	Email string `validate:"required,email"`
	Stage string `validate:"required,min=1,max=100"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := createAttendeeRequest{Name: "Ada", Email: "ada@example.com", Stage: "ga"}

	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		req       createAttendeeRequest
		wantField string
		wantTag   string
	}{
		{
			name:      "missing name",
			req:       createAttendeeRequest{Email: "ada@example.com", Stage: "ga"},
			wantField: "Name",
			wantTag:   "required",
		},
		{
			name:      "bad email",
			req:       createAttendeeRequest{Name: "Ada", Email: "not-an-email", Stage: "ga"},
			wantField: "Email",
			wantTag:   "email",
		},
		{
			name:      "name too long",
			req:       createAttendeeRequest{Name: strings.Repeat("a", 201), Email: "ada@example.com", Stage: "ga"},
			wantField: "Name",
			wantTag:   "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("field = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("tag = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&createAttendeeRequest{Name: "Ada", Stage: "ga"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "Email" {
		t.Errorf("details field = %v, want Email", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&createAttendeeRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("details fields type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("got %d field details, want 3", len(fields))
	}
	if !strings.Contains(apiErr.Message, "Name is required") {
		t.Errorf("message %q missing Name error", apiErr.Message)
	}
}
