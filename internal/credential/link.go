// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package credential

import (
	"context"
	"strings"
)

// LinkIssuer issues credentials without rendering an image. It is used
// when no QR render service is configured: attendees still receive their
// check-in link, just no PNG.
type LinkIssuer struct {
	appURL string
}

// NewLinkIssuer creates a link-only issuer for the given public base URL.
func NewLinkIssuer(appURL string) *LinkIssuer {
	return &LinkIssuer{appURL: strings.TrimSuffix(appURL, "/")}
}

// Issue returns a credential carrying the check-in link and no image path.
func (l *LinkIssuer) Issue(_ context.Context, recordID string) (*Credential, error) {
	return &Credential{
		RecordID: recordID,
		URL:      l.appURL + "/checkin/" + recordID,
	}, nil
}
