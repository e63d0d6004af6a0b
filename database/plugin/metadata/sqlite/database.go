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
package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/worksync/database/plugin/metadata"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const vacuumInterval = 24 * time.Hour

// MetadataStoreSqlite keeps ledger records in SQLite. An empty data dir
// selects a private in-memory database
type MetadataStoreSqlite struct {
	promRegistry prometheus.Registerer
	db           *gorm.DB
	logger       *slog.Logger
	timerVacuum  *time.Timer
	timerMutex   sync.Mutex
	vacuumWG     sync.WaitGroup
	dataDir      string
	closed       bool
}

// New creates and opens a SQLite metadata store
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	db, err := NewWithOptions(
		WithDataDir(dataDir),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
	if err != nil {
		return nil, err
	}
	if err := db.Start(); err != nil {
		return nil, err
	}
	return db, nil
}

// NewWithOptions creates a SQLite metadata store. The database is opened by
// Start()
func NewWithOptions(opts ...SqliteOptionFunc) (*MetadataStoreSqlite, error) {
	db := &MetadataStoreSqlite{}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		// Create logger to throw away logs
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db, nil
}

func (d *MetadataStoreSqlite) dsn() (string, error) {
	if d.dataDir == "" {
		// Each store gets its own named in-memory database. The shared cache
		// lets every pooled connection see the same data
		return fmt.Sprintf(
			"file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)",
			uuid.NewString(),
		), nil
	}
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(d.dataDir, fs.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	dbPath := filepath.Join(d.dataDir, "metadata.sqlite")
	// WAL journal mode, wait on locks, increase cache size to 50MB
	connOpts := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=cache_size(-50000)"
	return fmt.Sprintf("file:%s?%s", dbPath, connOpts), nil
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Start() error {
	dsn, err := d.dsn()
	if err != nil {
		return err
	}
	db, err := gorm.Open(sqlite.Open(dsn), metadata.GormConfig())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// SQLite allows a single writer, so serialize at the pool
	sqlDB.SetMaxOpenConns(1)
	d.db = db
	if err := metadata.Setup(d.db, d.logger); err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.scheduleDailyVacuum()
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Stop() error {
	return d.Close()
}

func (d *MetadataStoreSqlite) runVacuum() error {
	d.timerMutex.Lock()
	if d.dataDir == "" || d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	d.vacuumWG.Add(1)
	d.timerMutex.Unlock()
	defer d.vacuumWG.Done()
	return d.db.Exec("VACUUM").Error
}

// scheduleDailyVacuum schedules a daily vacuum to free unused space
func (d *MetadataStoreSqlite) scheduleDailyVacuum() {
	d.timerMutex.Lock()
	defer d.timerMutex.Unlock()
	if d.closed || d.dataDir == "" {
		return
	}
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
	}
	d.timerVacuum = time.AfterFunc(vacuumInterval, func() {
		defer d.scheduleDailyVacuum()
		d.logger.Debug(
			"running vacuum on sqlite metadata database",
			"component", "database",
		)
		if err := d.runVacuum(); err != nil {
			d.logger.Error(
				"failed to free unused space in metadata store",
				"component", "database",
				"error", err,
			)
		}
	})
}

// Close stops background maintenance and closes the database
func (d *MetadataStoreSqlite) Close() error {
	d.timerMutex.Lock()
	if d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	d.closed = true
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
		d.timerVacuum = nil
	}
	d.timerMutex.Unlock()
	d.vacuumWG.Wait()
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// DB returns the underlying gorm handle
func (d *MetadataStoreSqlite) DB() *gorm.DB {
	return d.db
}
