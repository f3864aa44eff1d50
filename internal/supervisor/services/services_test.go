// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockHTTPServer struct {
	listenErr    error
	shutdownErr  error
	shutdownSeen chan struct{}
	block        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		shutdownSeen: make(chan struct{}, 1),
		block:        make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.block
	return errors.New("http: Server closed")
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownSeen <- struct{}{}
	close(m.block)
	return m.shutdownErr
}

func TestHTTPServerService_StartFailurePropagates(t *testing.T) {
	mock := newMockHTTPServer()
	mock.listenErr = errors.New("bind: address already in use")
	svc := NewHTTPServerService(mock, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, mock.listenErr) {
		t.Errorf("Serve() = %v, want wrapped listen error", err)
	}
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	mock := newMockHTTPServer()
	svc := NewHTTPServerService(mock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	select {
	case <-mock.shutdownSeen:
	default:
		t.Error("Shutdown was not called")
	}
}

type mockHub struct {
	started chan struct{}
}

func (m *mockHub) RunWithContext(ctx context.Context) error {
	close(m.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestHubService_DelegatesToHub(t *testing.T) {
	mock := &mockHub{started: make(chan struct{})}
	svc := NewHubService(mock)

	if svc.String() != "notification-hub" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-mock.started:
	case <-time.After(time.Second):
		t.Fatal("hub never started")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub service did not stop")
	}
}
