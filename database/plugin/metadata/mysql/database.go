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
package mysql

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/worksync/database/plugin/metadata"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// mysqlUnknownDatabase is the server error number for a missing schema
const mysqlUnknownDatabase = 1049

// MetadataStoreMysql keeps ledger records in MySQL
type MetadataStoreMysql struct {
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

// NewWithOptions creates a new MySQL metadata store. The connection is
// opened by Start()
func NewWithOptions(opts ...MysqlOptionFunc) (*MetadataStoreMysql, error) {
	db := &MetadataStoreMysql{}
	for _, opt := range opts {
		opt(db)
	}
	if db.host == "" {
		db.host = "localhost"
	}
	if db.port == 0 {
		db.port = 3306
	}
	if db.user == "" {
		db.user = "root"
	}
	if db.database == "" {
		db.database = "worksync"
	}
	if db.timeZone == "" {
		db.timeZone = "UTC"
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db, nil
}

// config returns the parsed driver configuration
func (d *MetadataStoreMysql) config() (*mysql.Config, error) {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("mysql metadata: invalid dsn: %w", err)
		}
		cfg.ParseTime = true
		return cfg, nil
	}
	cfg := mysql.NewConfig()
	cfg.User = d.user
	cfg.Passwd = d.password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.host, strconv.FormatUint(uint64(d.port), 10))
	cfg.DBName = d.database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	if loc, err := time.LoadLocation(d.timeZone); err == nil {
		cfg.Loc = loc
	}
	if d.sslMode != "" {
		cfg.Params = map[string]string{"tls": d.sslMode}
	}
	return cfg, nil
}

// ensureDatabaseExists creates the configured schema using a connection
// without a default database
func (d *MetadataStoreMysql) ensureDatabaseExists(cfg *mysql.Config) error {
	adminCfg := cfg.Clone()
	adminCfg.DBName = ""
	adminDb, err := gorm.Open(
		gormmysql.Open(adminCfg.FormatDSN()),
		metadata.GormConfig(),
	)
	if err != nil {
		return err
	}
	sqlAdminDb, err := adminDb.DB()
	if err != nil {
		return err
	}
	defer sqlAdminDb.Close()
	return adminDb.Exec(
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.DBName),
	).Error
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	cfg, err := d.config()
	if err != nil {
		return err
	}
	db, err := gorm.Open(gormmysql.Open(cfg.FormatDSN()), metadata.GormConfig())
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if !errors.As(err, &mysqlErr) ||
			mysqlErr.Number != mysqlUnknownDatabase ||
			cfg.DBName == "" {
			return fmt.Errorf("mysql metadata: %w", err)
		}
		if err := d.ensureDatabaseExists(cfg); err != nil {
			return fmt.Errorf("mysql metadata: create database: %w", err)
		}
		db, err = gorm.Open(gormmysql.Open(cfg.FormatDSN()), metadata.GormConfig())
		if err != nil {
			return fmt.Errorf("mysql metadata: %w", err)
		}
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
		"connected to mysql metadata store",
		"component", "database",
		"addr", cfg.Addr,
		"database", cfg.DBName,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

// Close closes the database connection pool
func (d *MetadataStoreMysql) Close() error {
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
func (d *MetadataStoreMysql) DB() *gorm.DB {
	return d.db
}
