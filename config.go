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
package worksync

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/worksync/api"
	"github.com/blinklabs-io/worksync/internal/devnet"
	"github.com/blinklabs-io/worksync/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	keyWrapper         ledger.KeyWrapper
	seedScenario       *devnet.Scenario
	dataDir            string
	blobPlugin         string
	metadataPlugin     string
	apiListenAddress   string
	operator           string
	treasury           string
	tokenSecret        []byte
	reputationTiers    []ledger.ReputationTier
	feeBps             uint64
	maxPayloadSize     uint64
	eventQueueSize     int
	decimals           int32
	shutdownTimeout    time.Duration
	inMemory           bool
	verifyDeliveryKeys bool
	tracing            bool
	tracingStdout      bool
}

func (c *Config) validate() error {
	if c.operator == "" {
		return errors.New("an operator address is required")
	}
	if c.feeBps > ledger.MaxFeeBps {
		return fmt.Errorf(
			"platform fee %d bps exceeds %d",
			c.feeBps,
			ledger.MaxFeeBps,
		)
	}
	if c.apiListenAddress != "" && len(c.tokenSecret) < api.MinSecretSize {
		return fmt.Errorf(
			"the API requires a token secret of at least %d bytes",
			api.MinSecretSize,
		)
	}
	if len(c.reputationTiers) > 0 {
		if err := ledger.ValidateReputationTiers(c.reputationTiers); err != nil {
			return err
		}
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new worksync config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		feeBps: ledger.DefaultFeeBps,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

// WithLogger specifies the logger to use. The default discards all logs
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. The default is to not collect metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use for delivery payloads
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithInMemory keeps the whole ledger in process memory instead of the
// database plugins. Nothing survives a restart
func WithInMemory(inMemory bool) ConfigOptionFunc {
	return func(c *Config) {
		c.inMemory = inMemory
	}
}

// WithApiListenAddress specifies the listen address for the HTTP API. The API is disabled when empty
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithTokenSecret specifies the HMAC secret for API bearer tokens
func WithTokenSecret(secret []byte) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenSecret = secret
	}
}

// WithOperator specifies the address allowed to fund accounts and resolve disputes
func WithOperator(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.operator = address
	}
}

// WithTreasury specifies the address that receives platform fees
func WithTreasury(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.treasury = address
	}
}

// WithFeeBps specifies the platform fee in basis points. The default is 250
func WithFeeBps(feeBps uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.feeBps = feeBps
	}
}

// WithDecimals specifies the decimal places of the unit currency used by the API
func WithDecimals(decimals int32) ConfigOptionFunc {
	return func(c *Config) {
		c.decimals = decimals
	}
}

func WithMaxPayloadSize(size uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.maxPayloadSize = size
	}
}

// WithReputationTiers replaces the default reputation level names and thresholds
func WithReputationTiers(tiers []ledger.ReputationTier) ConfigOptionFunc {
	return func(c *Config) {
		c.reputationTiers = tiers
	}
}

// WithKeyWrapper specifies how delivery keys are protected at rest
func WithKeyWrapper(keyWrapper ledger.KeyWrapper) ConfigOptionFunc {
	return func(c *Config) {
		c.keyWrapper = keyWrapper
	}
}

// WithVerifyDeliveryKeys makes the ledger check shared keys against the delivery commitment
func WithVerifyDeliveryKeys(verify bool) ConfigOptionFunc {
	return func(c *Config) {
		c.verifyDeliveryKeys = verify
	}
}

// WithEventQueueSize specifies the per-subscriber event queue size
func WithEventQueueSize(size int) ConfigOptionFunc {
	return func(c *Config) {
		c.eventQueueSize = size
	}
}

// WithSeedScenario loads demo data into an empty ledger at startup
func WithSeedScenario(scenario *devnet.Scenario) ConfigOptionFunc {
	return func(c *Config) {
		c.seedScenario = scenario
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
