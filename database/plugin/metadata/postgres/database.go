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
package postgres

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blinklabs-io/worksync/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MetadataStorePostgres keeps ledger records in Postgres
type MetadataStorePostgres struct {
	promRegistry prometheus.Registerer
	db           *gorm.DB
	logger       *slog.Logger
	host         string
	user         string
	password     string
	database     string
	sslMode      string
	timeZone     string
	dsn          string
	port         uint
	maxConns     int
}

// NewWithOptions creates a new Postgres metadata store. The connection is
// opened by Start()
func NewWithOptions(opts ...PostgresOptionFunc) (*MetadataStorePostgres, error) {
	db := &MetadataStorePostgres{}
	for _, opt := range opts {
		opt(db)
	}
	if db.host == "" {
		db.host = "localhost"
	}
	if db.port == 0 {
		db.port = 5432
	}
	if db.user == "" {
		db.user = "postgres"
	}
	if db.database == "" {
		db.database = "worksync"
	}
	if db.sslMode == "" {
		db.sslMode = "disable"
	}
	if db.timeZone == "" {
		db.timeZone = "UTC"
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db, nil
}

func (d *MetadataStorePostgres) buildDSN() string {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		return dsn
	}
	parts := []string{
		"host=" + d.host,
		"user=" + d.user,
		"password=" + d.password,
		"dbname=" + d.database,
		"port=" + strconv.FormatUint(uint64(d.port), 10),
		"sslmode=" + d.sslMode,
	}
	if d.timeZone != "" {
		parts = append(parts, "TimeZone="+d.timeZone)
	}
	return strings.Join(parts, " ")
}

// Start implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Start() error {
	db, err := gorm.Open(postgres.Open(d.buildDSN()), metadata.GormConfig())
	if err != nil {
		return fmt.Errorf("postgres metadata: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if d.maxConns > 0 {
		sqlDB.SetMaxOpenConns(d.maxConns)
	}
	d.db = db
	if err := metadata.Setup(d.db, d.logger); err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.logger.Info(
		"connected to postgres metadata store",
		"component", "database",
		"host", d.host,
		"port", d.port,
		"database", d.database,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}

// Close closes the database connection pool
func (d *MetadataStorePostgres) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	d.db = nil
	return sqlDB.Close()
}

// DB returns the underlying gorm handle
func (d *MetadataStorePostgres) DB() *gorm.DB {
	return d.db
}
