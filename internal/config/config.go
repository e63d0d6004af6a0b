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
package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/worksync/database"
	"github.com/blinklabs-io/worksync/database/plugin"
	"github.com/blinklabs-io/worksync/ledger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "worksync.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultTokenTTL        = "24h"
	DefaultBlobPlugin      = database.DefaultBlobPlugin
	DefaultMetadataPlugin  = database.DefaultMetadataPlugin

	envPrefix = "worksync"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// ErrPluginListRequested is returned when the user requests to list available plugins
var ErrPluginListRequested = errors.New("plugin list requested")

// RunMode represents the operational mode of the server
type RunMode string

const (
	RunModeServe RunMode = "serve" // Persistent storage through the database plugins (default)
	RunModeDev   RunMode = "dev"   // In-memory storage seeded with demo data
)

// Valid returns true if the RunMode is a known valid mode
func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

type tempConfig struct {
	Config   yaml.Node       `yaml:"config,omitempty"`
	Database *databaseConfig `yaml:"database,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	BindAddr         string  `yaml:"bindAddr"         split_words:"true"`
	ApiListenAddress string  `yaml:"apiListenAddress" split_words:"true"`
	DatabasePath     string  `yaml:"databasePath"     split_words:"true"`
	BlobPlugin       string  `yaml:"blobPlugin"       envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin   string  `yaml:"metadataPlugin"   envconfig:"DATABASE_METADATA_PLUGIN"`
	ShutdownTimeout  string  `yaml:"shutdownTimeout"  split_words:"true"`
	RunMode          RunMode `yaml:"runMode"          split_words:"true"`
	// TokenSecret signs API bearer tokens and must be at least 32 bytes
	TokenSecret string `yaml:"tokenSecret" split_words:"true"`
	TokenTTL    string `yaml:"tokenTTL"    envconfig:"TOKEN_TTL"`
	Operator    string `yaml:"operator"`
	Treasury    string `yaml:"treasury"`
	// ReputationTiers replaces the default level names and thresholds
	ReputationTiers    []ledger.ReputationTier `yaml:"reputationTiers"    ignored:"true"`
	FeeBps             uint64                  `yaml:"feeBps"             split_words:"true"`
	MaxPayloadSize     uint64                  `yaml:"maxPayloadSize"     split_words:"true"`
	MetricsPort        uint                    `yaml:"metricsPort"        split_words:"true"`
	Decimals           int32                   `yaml:"decimals"`
	EventQueueSize     int                     `yaml:"eventQueueSize"     split_words:"true"`
	KeyWrap            bool                    `yaml:"keyWrap"            split_words:"true"`
	VerifyDeliveryKeys bool                    `yaml:"verifyDeliveryKeys" split_words:"true"`
	Tracing            bool                    `yaml:"tracing"`
	TracingStdout      bool                    `yaml:"tracingStdout"      split_words:"true"`
}

// DefaultConfig returns the settings used when no file or environment
// override is present
func DefaultConfig() *Config {
	return &Config{
		BindAddr:         "0.0.0.0",
		ApiListenAddress: ":8080",
		DatabasePath:     ".worksync",
		BlobPlugin:       DefaultBlobPlugin,
		MetadataPlugin:   DefaultMetadataPlugin,
		ShutdownTimeout:  DefaultShutdownTimeout,
		RunMode:          RunModeServe,
		TokenTTL:         DefaultTokenTTL,
		Operator:         "operator",
		Treasury:         ledger.DefaultTreasury,
		FeeBps:           ledger.DefaultFeeBps,
		MaxPayloadSize:   ledger.DefaultMaxPayloadSize,
		MetricsPort:      12799,
		Decimals:         ledger.DefaultDecimals,
	}
}

// ShutdownDuration parses ShutdownTimeout
func (c *Config) ShutdownDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 30 * time.Second, nil
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return ret, nil
}

// TokenDuration parses TokenTTL. A zero duration issues tokens without expiry
func (c *Config) TokenDuration() (time.Duration, error) {
	if c.TokenTTL == "" {
		return 0, nil
	}
	ret, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid token TTL: %w", err)
	}
	return ret, nil
}

// Validate checks values that cannot be caught when parsing
func (c *Config) Validate() error {
	if !c.RunMode.Valid() {
		return fmt.Errorf(
			"invalid runMode: %q (must be 'serve' or 'dev')",
			c.RunMode,
		)
	}
	if c.FeeBps > ledger.MaxFeeBps {
		return fmt.Errorf(
			"feeBps %d exceeds %d",
			c.FeeBps,
			ledger.MaxFeeBps,
		)
	}
	if c.Decimals < 0 || c.Decimals > 18 {
		return fmt.Errorf("decimals must be between 0 and 18, got %d", c.Decimals)
	}
	if len(c.ReputationTiers) > 0 {
		if err := ledger.ValidateReputationTiers(c.ReputationTiers); err != nil {
			return err
		}
	}
	if _, err := c.ShutdownDuration(); err != nil {
		return err
	}
	if _, err := c.TokenDuration(); err != nil {
		return err
	}
	return nil
}

// LoadConfig builds the configuration from defaults, the YAML config file, a
// .env file in the working directory and WORKSYNC_* environment variables,
// in increasing order of precedence
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadConfigFile(configFile, cfg); err != nil {
			return nil, err
		}
	}
	// A missing .env file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if cfg.RunMode == "" {
		cfg.RunMode = RunModeServe
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile checks ~/.worksync/worksync.yaml, then
// /etc/worksync/worksync.yaml
func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".worksync", "worksync.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/worksync/worksync.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

func loadConfigFile(configFile string, cfg *Config) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if !tempCfg.Config.IsZero() {
		// Decode the config section over the defaults already in cfg
		if err := tempCfg.Config.Decode(cfg); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		// A file without a config section holds the main config at the top level
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if tempCfg.Database == nil {
		return nil
	}
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Database.Blob != nil {
		name, sections := pluginSections("blob", tempCfg.Database.Blob)
		if name != "" {
			cfg.BlobPlugin = name
		}
		pluginConfig["blob"] = sections
	}
	if tempCfg.Database.Metadata != nil {
		name, sections := pluginSections("metadata", tempCfg.Database.Metadata)
		if name != "" {
			cfg.MetadataPlugin = name
		}
		pluginConfig["metadata"] = sections
	}
	if err := plugin.ProcessConfig(pluginConfig); err != nil {
		return fmt.Errorf("error processing plugin config: %w", err)
	}
	return nil
}

// pluginSections splits a database.blob or database.metadata section into
// the selected plugin name and the per-plugin option maps
func pluginSections(
	kind string,
	section map[string]any,
) (string, map[string]map[string]any) {
	var name string
	ret := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			if pluginName, ok := v.(string); ok {
				name = pluginName
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			ret[k] = maps.Clone(val)
		case map[any]any:
			stringAnyMap := make(map[string]any, len(val))
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				kind,
				k,
				v,
			)
		}
	}
	return name, ret
}

// ListPlugins writes the available plugins of the requested kinds and
// returns ErrPluginListRequested if anything was listed
func ListPlugins(blobPlugin string, metadataPlugin string) (string, error) {
	var out string
	if blobPlugin == "list" {
		out += "Available blob plugins:\n"
		for _, p := range plugin.GetPlugins(plugin.PluginTypeBlob) {
			out += fmt.Sprintf("  %s: %s\n", p.Name, p.Description)
		}
	}
	if metadataPlugin == "list" {
		if out != "" {
			out += "\n"
		}
		out += "Available metadata plugins:\n"
		for _, p := range plugin.GetPlugins(plugin.PluginTypeMetadata) {
			out += fmt.Sprintf("  %s: %s\n", p.Name, p.Description)
		}
	}
	if out == "" {
		return "", nil
	}
	return out, ErrPluginListRequested
}
