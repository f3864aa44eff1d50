// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/checkin/{id}", "204"))
	RecordAPIRequest("GET", "/checkin/{id}", "204", 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/checkin/{id}", "204"))

	if after != before+1 {
		t.Errorf("APIRequestsTotal = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("active requests after start = %v, want %v", got, base+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("active requests after finish = %v, want %v", got, base)
	}
}

func TestBatchItemsTotal_Labels(t *testing.T) {
	for _, outcome := range []string{"created", "duplicate_email", "issuance_error", "store_error"} {
		before := testutil.ToFloat64(BatchItemsTotal.WithLabelValues(outcome))
		BatchItemsTotal.WithLabelValues(outcome).Inc()
		after := testutil.ToFloat64(BatchItemsTotal.WithLabelValues(outcome))
		if after != before+1 {
			t.Errorf("BatchItemsTotal[%s] = %v, want %v", outcome, after, before+1)
		}
	}
}
