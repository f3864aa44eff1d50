// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package hub implements the channel-typed publish/subscribe broker that
// streams state changes to live dashboard observers over WebSocket.
//
// The set of channels is closed: new_user and checkin. Each channel holds
// its subscribers in registration order, and a publish delivers one discrete
// message to every subscriber of that channel in that order. Delivery is
// best-effort per subscriber: a slow or dead connection is dropped, never
// surfaced to the publisher.
//
// A single event-loop goroutine (RunWithContext) owns the registry; clients
// register, unregister, and broadcast through channels, so subscribe,
// unsubscribe, and publish interleave safely by construction.
package hub

import (
	"context"
	"errors"
	"sync"

	"github.com/doorcheck/doorcheck/internal/logging"
	"github.com/doorcheck/doorcheck/internal/metrics"
	"github.com/doorcheck/doorcheck/internal/models"
)

// Channel is a named broadcast topic. The set of channels is fixed at
// compile time; ParseChannel is the only way to obtain one from user input.
type Channel string

const (
	// ChannelNewUser carries attendee-created and submission-received events.
	ChannelNewUser Channel = "new_user"

	// ChannelCheckin carries attendee check-in transitions.
	ChannelCheckin Channel = "checkin"
)

// ErrInvalidChannel indicates a subscribe request for a channel name outside
// the fixed set.
var ErrInvalidChannel = errors.New("hub: invalid channel")

// Channels returns the closed set of event channels.
func Channels() []Channel {
	return []Channel{ChannelNewUser, ChannelCheckin}
}

// ParseChannel validates a channel name from user input.
func ParseChannel(name string) (Channel, error) {
	switch Channel(name) {
	case ChannelNewUser:
		return ChannelNewUser, nil
	case ChannelCheckin:
		return ChannelCheckin, nil
	default:
		return "", ErrInvalidChannel
	}
}

// Message frame types.
const (
	// MessageTypeConnected is the acknowledgment frame sent to a subscriber
	// immediately after registration.
	MessageTypeConnected = "connected"

	// MessageTypeEvent carries a broadcast payload.
	MessageTypeEvent = "event"

	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is one discrete frame written to a subscriber.
type Message struct {
	Type    string      `json:"type"`
	Channel Channel     `json:"channel,omitempty"`
	Data    interface{} `json:"data"`
}

// Hub maintains per-channel subscriber lists and broadcasts messages to them.
type Hub struct {
	// subscribers holds each channel's clients in registration order.
	subscribers map[Channel][]*Client

	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub with empty subscriber lists for every channel in
// the fixed set.
func NewHub() *Hub {
	subscribers := make(map[Channel][]*Client, len(Channels()))
	for _, ch := range Channels() {
		subscribers[ch] = nil
	}
	return &Hub{
		subscribers: subscribers,
		broadcast:   make(chan Message, 256),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
	}
}

// RunWithContext runs the hub event loop until the context is canceled,
// then gracefully closes all clients and returns ctx.Err(). Designed for
// suture supervision.
//
// Lifecycle events (register/unregister) are drained before broadcasts so
// the registry is consistent when a message fans out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		// Drain pending lifecycle events before touching broadcasts.
		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToSubscribers(message)
		}
	}
}

// register appends the client to its channel's subscriber list and sends
// the acknowledgment frame.
func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.subscribers[client.channel] = append(h.subscribers[client.channel], client)
	total := h.totalLocked()
	h.mu.Unlock()

	ack := Message{
		Type:    MessageTypeConnected,
		Channel: client.channel,
		Data:    "subscribed to " + string(client.channel),
	}
	select {
	case client.send <- ack:
	default:
	}

	metrics.WebSocketClients.Set(float64(total))
	logging.Info().
		Str("channel", string(client.channel)).
		Int("total_clients", total).
		Msg("observer connected")
}

// unregister removes the client from its channel's subscriber list. Safe to
// call for a client that was never registered or was already removed.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	total := h.totalLocked()
	h.mu.Unlock()

	if !removed {
		return
	}
	close(client.send)

	metrics.WebSocketClients.Set(float64(total))
	logging.Info().
		Str("channel", string(client.channel)).
		Int("total_clients", total).
		Msg("observer disconnected")
}

// removeLocked splices the client out of its channel list. Returns false if
// the client was not present (idempotent removal). Must be called with mu
// held.
func (h *Hub) removeLocked(client *Client) bool {
	list := h.subscribers[client.channel]
	for i, c := range list {
		if c == client {
			h.subscribers[client.channel] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// totalLocked counts subscribers across all channels. Must be called with
// mu held.
func (h *Hub) totalLocked() int {
	total := 0
	for _, list := range h.subscribers {
		total += len(list)
	}
	return total
}

// broadcastToSubscribers delivers a message to every subscriber of its
// channel in registration order. Iteration happens over a copy of the list
// so registrations mid-flight do not perturb delivery. A subscriber whose
// send buffer is full is dropped from the registry.
func (h *Hub) broadcastToSubscribers(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.subscribers[message.Channel]
	targets := make([]*Client, len(list))
	copy(targets, list)

	var toRemove []*Client
	for _, client := range targets {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		if h.removeLocked(client) {
			close(client.send)
			logging.Warn().
				Str("channel", string(client.channel)).
				Msg("observer send buffer full, dropping connection")
		}
	}
}

// shutdown closes all clients and logs the reason.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	closed := 0
	for ch, list := range h.subscribers {
		for _, client := range list {
			close(client.send)
			closed++
		}
		h.subscribers[ch] = nil
	}
	h.mu.Unlock()

	metrics.WebSocketClients.Set(0)

	reason := "context_canceled"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "hub").
		Str("reason", reason).
		Int("clients_closed", closed).
		Msg("notification hub stopped")
}

// Publish enqueues a payload for broadcast on the given channel. It never
// blocks the caller: if the broadcast buffer is full the message is dropped
// and counted.
func (h *Hub) Publish(ch Channel, data interface{}) {
	message := Message{
		Type:    MessageTypeEvent,
		Channel: ch,
		Data:    data,
	}

	select {
	case h.broadcast <- message:
	default:
		metrics.BroadcastsDropped.WithLabelValues(string(ch)).Inc()
		logging.Warn().Str("channel", string(ch)).Msg("broadcast buffer full, dropping message")
	}
}

// BroadcastNewAttendee publishes a created attendee on the new_user channel.
func (h *Hub) BroadcastNewAttendee(a *models.Attendee) {
	h.Publish(ChannelNewUser, a)
}

// BroadcastCheckin publishes a checked-in attendee on the checkin channel.
func (h *Hub) BroadcastCheckin(a *models.Attendee) {
	h.Publish(ChannelCheckin, a)
}

// BroadcastSubmission publishes a form submission on the new_user channel.
func (h *Hub) BroadcastSubmission(sub *models.Submission) {
	h.Publish(ChannelNewUser, sub)
}

// ClientCount returns the number of subscribers on one channel.
func (h *Hub) ClientCount(ch Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[ch])
}

// TotalClients returns the number of subscribers across all channels.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalLocked()
}
