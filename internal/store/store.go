// Doorcheck - Live Event Check-In and Real-Time Attendance
// Copyright 2026 Doorcheck Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/doorcheck/doorcheck

// Package store provides the BadgerDB-backed keyed store for attendee
// records and form submissions.
//
// Attendees are written under two keys, id:<id> and email:<email>, so they
// are reachable from either. The store enforces no uniqueness itself; the
// ingest layer checks the email key before creating. Submissions live under
// submissions:<id> and are never rewritten.
//
// Storage failures are wrapped and propagated to the caller; the store
// performs no retries. Concurrent writes for the same id are last-write-wins.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/doorcheck/doorcheck/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	attendeeIDPrefix    = "id:"
	attendeeEmailPrefix = "email:"
	submissionKeyPrefix = "submissions:"
)

// ErrNotFound indicates no record exists under the requested key.
var ErrNotFound = errors.New("store: record not found")

// Options configures the store backend.
type Options struct {
	// Path is the on-disk Badger directory. Ignored when InMemory is set.
	Path string

	// InMemory backs the store with memory only. Used by tests and
	// ephemeral deployments.
	InMemory bool
}

// Store is the keyed store shared by all request handlers. Construct one per
// process and inject it by reference.
type Store struct {
	db *badger.DB
}

// Open opens the Badger database and returns the store.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is usable. Used by the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// SaveAttendee writes the record under both its id key and its email key in
// a single transaction. It must be reachable from either key afterward.
func (s *Store) SaveAttendee(ctx context.Context, a models.Attendee) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("store: marshal attendee: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(attendeeIDPrefix+a.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(attendeeEmailPrefix+a.Email), data)
	})
	if err != nil {
		return fmt.Errorf("store: save attendee %s: %w", a.ID, err)
	}
	return nil
}

// AttendeeByID retrieves an attendee by its primary id key.
// Returns ErrNotFound if absent.
func (s *Store) AttendeeByID(ctx context.Context, id string) (*models.Attendee, error) {
	return s.getAttendee(ctx, attendeeIDPrefix+id)
}

// AttendeeByEmail retrieves an attendee by its unique email key.
// Returns ErrNotFound if absent.
func (s *Store) AttendeeByEmail(ctx context.Context, email string) (*models.Attendee, error) {
	return s.getAttendee(ctx, attendeeEmailPrefix+email)
}

func (s *Store) getAttendee(ctx context.Context, key string) (*models.Attendee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var a models.Attendee
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		})
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return &a, nil
}

// UpdateAttendee reads the existing record by id, shallow-merges the
// incoming fields over it, and re-saves under both keys. If no prior record
// exists, the incoming record becomes authoritative.
func (s *Store) UpdateAttendee(ctx context.Context, incoming models.Attendee) error {
	existing, err := s.AttendeeByID(ctx, incoming.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	merged := incoming
	if existing != nil {
		merged = existing.Merge(incoming)
	}
	return s.SaveAttendee(ctx, merged)
}

// PutSubmission stores a form submission under its namespaced key.
func (s *Store) PutSubmission(ctx context.Context, sub models.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("store: marshal submission: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(submissionKeyPrefix+sub.ID), data)
	})
	if err != nil {
		return fmt.Errorf("store: put submission %s: %w", sub.ID, err)
	}
	return nil
}

// Submission retrieves a stored form submission by its external id.
// Returns ErrNotFound if absent.
func (s *Store) Submission(ctx context.Context, id string) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sub models.Submission
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(submissionKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sub)
		})
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get submission %s: %w", id, err)
	}
	return &sub, nil
}
