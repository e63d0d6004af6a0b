// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package memory provides a volatile ledger backend. All data is lost when
// the process exits.
package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
)

var ErrStoreClosed = errors.New("memory store is closed")

type eventKey struct {
	jobID    uint64
	sequence uint64
}

// Store keeps all ledger records in maps guarded by a single RWMutex
type Store struct {
	logger       *slog.Logger
	users        map[string]models.User
	accounts     map[string]models.Account
	jobs         map[uint64]models.Job
	applications map[uint64]models.Application
	appsByJob    map[uint64][]uint64
	deliveries   map[uint64]models.Delivery
	payloads     map[string][]byte
	reviews      map[uint64]models.Review
	disputes     map[uint64]models.Dispute
	eventKeys    map[eventKey]struct{}
	entries      []models.LedgerEntry
	events       []models.EventRecord
	lastJobID    uint64
	lastAppID    uint64
	lastReviewID uint64
	mu           sync.RWMutex
	closed       bool
}

type StoreOptionFunc func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) StoreOptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty in-memory store
func New(opts ...StoreOptionFunc) *Store {
	s := &Store{
		users:        make(map[string]models.User),
		accounts:     make(map[string]models.Account),
		jobs:         make(map[uint64]models.Job),
		applications: make(map[uint64]models.Application),
		appsByJob:    make(map[uint64][]uint64),
		deliveries:   make(map[uint64]models.Delivery),
		payloads:     make(map[string][]byte),
		reviews:      make(map[uint64]models.Review),
		disputes:     make(map[uint64]models.Dispute),
		eventKeys:    make(map[eventKey]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s
}

// Update runs fn with exclusive access to the store. Any writes made by fn
// are undone if it returns an error.
func (s *Store) Update(
	ctx context.Context,
	fn func(types.StoreTxn) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	txn := &memTxn{store: s, readWrite: true}
	if err := fn(txn); err != nil {
		txn.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		txn.rollback()
		return err
	}
	return nil
}

// View runs fn with shared read access to the store
func (s *Store) View(
	ctx context.Context,
	fn func(types.StoreTxn) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return fn(&memTxn{store: s})
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.logger.Debug(
		"memory store closed",
		"component", "database",
	)
	return nil
}
