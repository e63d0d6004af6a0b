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
package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/worksync/database/plugin/blob"
	"github.com/blinklabs-io/worksync/database/plugin/metadata"
	"github.com/blinklabs-io/worksync/database/types"
	"gorm.io/gorm"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Database is a persistent ledger store. Records live in a relational
// metadata store and delivery payloads in a blob store
type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	// writeMu serializes read-write transactions across all backends
	writeMu sync.Mutex
	closeMu sync.RWMutex
	closed  bool
}

// New starts the named blob and metadata plugins and returns a database
// using them
func New(
	logger *slog.Logger,
	blobPlugin string,
	metadataPlugin string,
) (*Database, error) {
	if blobPlugin == "" {
		blobPlugin = DefaultBlobPlugin
	}
	if metadataPlugin == "" {
		metadataPlugin = DefaultMetadataPlugin
	}
	metadataStore, err := metadata.New(metadataPlugin)
	if err != nil {
		return nil, err
	}
	blobStore, err := blob.New(blobPlugin)
	if err != nil {
		_ = metadataStore.Close()
		return nil, err
	}
	return NewWithStores(logger, blobStore, metadataStore), nil
}

// NewWithStores returns a database using already started stores
func NewWithStores(
	logger *slog.Logger,
	blobStore blob.BlobStore,
	metadataStore metadata.MetadataStore,
) *Database {
	if logger == nil {
		// Create logger to throw away logs
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Database{
		logger:   logger,
		blob:     blobStore,
		metadata: metadataStore,
	}
}

// Blob returns the underlying blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

func (d *Database) run(
	ctx context.Context,
	readWrite bool,
	fn func(types.StoreTxn) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.closeMu.RLock()
	defer d.closeMu.RUnlock()
	if d.closed {
		return types.ErrNoStoreAvailable
	}
	if d.metadata == nil || d.blob == nil {
		return types.ErrNoStoreAvailable
	}
	return d.metadata.DB().WithContext(ctx).Transaction(
		func(tx *gorm.DB) error {
			return fn(newTxn(ctx, d, tx, readWrite))
		},
	)
}

// Update runs fn in a read-write transaction. The metadata transaction is
// committed if fn returns nil. Blob writes are not transactional, but blob
// keys are content-addressed so a payload left behind by a rolled back
// transaction is unreferenced and harmless
func (d *Database) Update(
	ctx context.Context,
	fn func(types.StoreTxn) error,
) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return d.run(ctx, true, fn)
}

// View runs fn in a read-only transaction
func (d *Database) View(
	ctx context.Context,
	fn func(types.StoreTxn) error,
) error {
	return d.run(ctx, false, fn)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	d.closeMu.Lock()
	defer d.closeMu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	var err error
	if d.metadata != nil {
		if metadataErr := d.metadata.Close(); metadataErr != nil {
			err = errors.Join(err, fmt.Errorf("metadata: %w", metadataErr))
		}
	}
	if d.blob != nil {
		if blobErr := d.blob.Close(); blobErr != nil {
			err = errors.Join(err, fmt.Errorf("blob: %w", blobErr))
		}
	}
	return err
}
