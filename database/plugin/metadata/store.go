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
package metadata

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/plugin"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MetadataStore is a relational backend holding all ledger records. Queries
// are issued through the gorm handle returned by DB()
type MetadataStore interface {
	plugin.Plugin
	Close() error
	DB() *gorm.DB
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}

// GormConfig returns the gorm settings shared by all metadata plugins
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Discard,
		// Writes always happen inside an explicit transaction
		SkipDefaultTransaction: true,
	}
}

// Setup enables tracing on a freshly opened handle and creates or updates the
// table schemas
func Setup(db *gorm.DB, logger *slog.Logger) error {
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		logger.Debug(
			fmt.Sprintf("creating table: %T", model),
			"component", "database",
		)
		if err := db.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}
