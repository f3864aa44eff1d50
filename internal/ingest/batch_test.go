// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/doorcheck/doorcheck/internal/credential"
	"github.com/doorcheck/doorcheck/internal/hub"
	"github.com/doorcheck/doorcheck/internal/logging"
	"github.com/doorcheck/doorcheck/internal/models"
	"github.com/doorcheck/doorcheck/internal/store"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// stubIssuer issues credentials without an external render service.
type stubIssuer struct {
	calls    atomic.Int64
	failWith error
}

func (s *stubIssuer) Issue(_ context.Context, recordID string) (*credential.Credential, error) {
	s.calls.Add(1)
	if s.failWith != nil {
		return nil, s.failWith
	}
	return &credential.Credential{
		RecordID: recordID,
		URL:      "https://desk.example.com/checkin/" + recordID,
		Path:     "/tmp/" + recordID + ".png",
	}, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestHub(t *testing.T) *hub.Hub {
	t.Helper()
	h := hub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

// dialChannel subscribes to a hub channel over a real websocket and returns
// the observer-side connection with the ack frame already consumed.
func dialChannel(t *testing.T, h *hub.Hub, channel hub.Channel) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		client := hub.NewClient(h, conn, channel)
		h.Register <- client
		client.Start()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var ack hub.Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != hub.MessageTypeConnected {
		t.Fatalf("first frame type = %q, want %q", ack.Type, hub.MessageTypeConnected)
	}
	return conn
}

func TestBatchIngest_AllSucceed(t *testing.T) {
	st := newTestStore(t)
	h := newTestHub(t)
	issuer := &stubIssuer{}
	b := NewBatchIngestor(st, h, issuer)
	ctx := context.Background()

	conn := dialChannel(t, h, hub.ChannelNewUser)

	reqs := []CreateRequest{
		{Name: "Ada", Email: "ada@example.com", Stage: "ga"},
		{Name: "Grace", Email: "grace@example.com", Stage: "vip"},
		{Name: "Edsger", Email: "edsger@example.com", Stage: "ga"},
	}

	outcomes := b.Ingest(ctx, reqs)
	if len(outcomes) != len(reqs) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(reqs))
	}

	seen := map[string]bool{}
	for i, out := range outcomes {
		if out.Err != nil {
			t.Fatalf("item %d failed: %v", i, out.Err)
		}
		if out.Index != i {
			t.Errorf("item %d: outcome index = %d", i, out.Index)
		}
		a := out.Attendee
		if a.Status != models.StatusAbsent || a.ArrivedAt != "" {
			t.Errorf("item %d: new record status = %q arrived_at = %q, want ABSENT and empty", i, a.Status, a.ArrivedAt)
		}
		if a.Email != reqs[i].Email {
			t.Errorf("item %d: email = %q, want %q", i, a.Email, reqs[i].Email)
		}
		if seen[a.ID] {
			t.Errorf("duplicate generated id %q", a.ID)
		}
		seen[a.ID] = true

		if out.Credential == nil || out.Credential.RecordID != a.ID {
			t.Errorf("item %d: credential not bound to record", i)
		}

		// Reachable from both keys.
		byID, err := st.AttendeeByID(ctx, a.ID)
		if err != nil {
			t.Fatalf("item %d: load by id: %v", i, err)
		}
		byEmail, err := st.AttendeeByEmail(ctx, a.Email)
		if err != nil {
			t.Fatalf("item %d: load by email: %v", i, err)
		}
		if byID.ID != byEmail.ID {
			t.Errorf("item %d: id key and email key disagree", i)
		}
	}

	if got := issuer.calls.Load(); got != 3 {
		t.Errorf("issuer calls = %d, want 3", got)
	}

	// One new_user event per created record, in some completion order.
	got := map[string]bool{}
	for range reqs {
		var msg hub.Message
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read broadcast: %v", err)
		}
		payload, ok := msg.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("payload type %T", msg.Data)
		}
		got[payload["email"].(string)] = true
	}
	for _, req := range reqs {
		if !got[req.Email] {
			t.Errorf("no new_user broadcast for %s", req.Email)
		}
	}
}

func TestBatchIngest_DuplicateEmailDoesNotAbortSiblings(t *testing.T) {
	st := newTestStore(t)
	h := newTestHub(t)
	b := NewBatchIngestor(st, h, &stubIssuer{})
	ctx := context.Background()

	existing := models.Attendee{ID: "att-0", Name: "Ada", Email: "ada@example.com", Stage: "ga", Status: models.StatusPresent, ArrivedAt: "2026-09-01T09:00:00Z"}
	if err := st.SaveAttendee(ctx, existing); err != nil {
		t.Fatalf("seed attendee: %v", err)
	}

	outcomes := b.Ingest(ctx, []CreateRequest{
		{Name: "Grace", Email: "grace@example.com", Stage: "vip"},
		{Name: "Ada Again", Email: "ada@example.com", Stage: "ga"},
		{Name: "Edsger", Email: "edsger@example.com", Stage: "ga"},
	})

	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("sibling items failed: %v, %v", outcomes[0].Err, outcomes[2].Err)
	}
	if !errors.Is(outcomes[1].Err, ErrDuplicateEmail) {
		t.Errorf("duplicate item error = %v, want ErrDuplicateEmail", outcomes[1].Err)
	}

	// The existing record was not mutated by the rejected item.
	got, err := st.AttendeeByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("reload existing: %v", err)
	}
	if got.ID != "att-0" || got.Name != "Ada" || got.Status != models.StatusPresent {
		t.Errorf("existing record mutated: %+v", got)
	}
}

func TestBatchIngest_IssuanceFailureLeavesNoRecord(t *testing.T) {
	st := newTestStore(t)
	h := newTestHub(t)
	issuer := &stubIssuer{failWith: fmt.Errorf("%w: render service down", credential.ErrIssuance)}
	b := NewBatchIngestor(st, h, issuer)
	ctx := context.Background()

	outcomes := b.Ingest(ctx, []CreateRequest{
		{Name: "Ada", Email: "ada@example.com", Stage: "ga"},
	})

	if !errors.Is(outcomes[0].Err, credential.ErrIssuance) {
		t.Fatalf("outcome error = %v, want ErrIssuance", outcomes[0].Err)
	}
	if _, err := st.AttendeeByEmail(ctx, "ada@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("record persisted despite issuance failure (err = %v)", err)
	}
}

func TestBatchIngest_EmptyBatch(t *testing.T) {
	b := NewBatchIngestor(newTestStore(t), newTestHub(t), &stubIssuer{})

	outcomes := b.Ingest(context.Background(), nil)
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes for empty batch, want 0", len(outcomes))
	}
}
