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
package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/worksync/database/plugin"
	"github.com/blinklabs-io/worksync/database/plugin/blob"
	"github.com/blinklabs-io/worksync/database/types"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

const gcInterval = 5 * time.Minute

// BlobStoreBadger stores delivery payloads in badger. With no data dir the
// store is in-memory and nothing is persisted
type BlobStoreBadger struct {
	promRegistry   prometheus.Registerer
	db             *badger.DB
	logger         *slog.Logger
	metrics        *blob.Metrics
	gcTicker       *time.Ticker
	gcStopCh       chan struct{}
	dataDir        string
	gcWg           sync.WaitGroup
	blockCacheSize uint64
	indexCacheSize uint64
	valueThreshold int64
	gcEnabled      bool
}

// New creates a new badger blob store
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	db := &BlobStoreBadger{
		gcEnabled:      true,
		blockCacheSize: DefaultBlockCacheSize,
		indexCacheSize: DefaultIndexCacheSize,
		valueThreshold: DefaultValueThreshold,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var badgerOpts badger.Options
	if db.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
		// Value log GC is not supported for in-memory stores
		db.gcEnabled = false
	} else {
		if _, err := os.Stat(db.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(db.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(filepath.Join(db.dataDir, "blob")).
			WithBlockCacheSize(int64(db.blockCacheSize)). //nolint:gosec // bounded by config
			WithIndexCacheSize(int64(db.indexCacheSize)). //nolint:gosec // bounded by config
			WithCompression(options.Snappy)
	}
	badgerOpts = badgerOpts.
		WithLogger(plugin.NewPrintfLogger(db.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING).
		WithValueThreshold(db.valueThreshold)
	blobDb, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	db.db = blobDb
	db.init()
	return db, nil
}

func (d *BlobStoreBadger) init() {
	d.metrics = blob.NewMetrics(d.promRegistry, "badger")
	if d.gcEnabled {
		d.gcTicker = time.NewTicker(gcInterval)
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.blobGc(d.gcTicker, d.gcStopCh)
	}
}

func (d *BlobStoreBadger) blobGc(t *time.Ticker, stop <-chan struct{}) {
	defer d.gcWg.Done()
	for {
		select {
		case <-t.C:
			// Keep collecting until there is nothing left to rewrite
			for {
				err := d.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					d.logger.Warn(
						fmt.Sprintf("blob DB: GC failure: %s", err),
						"component", "database",
					)
				}
				break
			}
		case <-stop:
			return
		}
	}
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreBadger) Start() error {
	// Database is opened in New()
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

// Close stops background GC and closes the database
func (d *BlobStoreBadger) Close() error {
	if d.gcTicker != nil {
		d.gcTicker.Stop()
		close(d.gcStopCh)
		d.gcWg.Wait()
		d.gcTicker = nil
	}
	if d.db == nil || d.db.IsClosed() {
		return nil
	}
	return d.db.Close()
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

// Get returns the payload stored under key
func (d *BlobStoreBadger) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ret []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return types.ErrBlobKeyNotFound
			}
			return err
		}
		ret, err = item.ValueCopy(nil)
		return err
	})
	d.metrics.Observe("get", len(ret), err)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Set stores a payload under key
func (d *BlobStoreBadger) Set(
	ctx context.Context,
	key string,
	val []byte,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	d.metrics.Observe("set", len(val), err)
	return err
}

// Delete removes the payload stored under key
func (d *BlobStoreBadger) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	d.metrics.Observe("delete", 0, err)
	return err
}
