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
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/worksync"
	"github.com/blinklabs-io/worksync/database/sops"
	"github.com/blinklabs-io/worksync/internal/config"
	"github.com/blinklabs-io/worksync/internal/devnet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DevTokenSecret signs API tokens in dev mode when no secret is configured
const DevTokenSecret = "worksync-dev-token-secret-not-for-production"

// TokenSecret returns the configured token secret, falling back to
// DevTokenSecret in dev mode
func TokenSecret(cfg *config.Config) []byte {
	if cfg.TokenSecret == "" && cfg.RunMode.IsDevMode() {
		return []byte(DevTokenSecret)
	}
	return []byte(cfg.TokenSecret)
}

// nodeOptions translates the loaded configuration into node options
func nodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
) ([]worksync.ConfigOptionFunc, error) {
	shutdownTimeout, err := cfg.ShutdownDuration()
	if err != nil {
		return nil, err
	}
	opts := []worksync.ConfigOptionFunc{
		worksync.WithLogger(logger),
		worksync.WithDatabasePath(cfg.DatabasePath),
		worksync.WithBlobPlugin(cfg.BlobPlugin),
		worksync.WithMetadataPlugin(cfg.MetadataPlugin),
		worksync.WithOperator(cfg.Operator),
		worksync.WithTreasury(cfg.Treasury),
		worksync.WithFeeBps(cfg.FeeBps),
		worksync.WithDecimals(cfg.Decimals),
		worksync.WithMaxPayloadSize(cfg.MaxPayloadSize),
		worksync.WithReputationTiers(cfg.ReputationTiers),
		worksync.WithVerifyDeliveryKeys(cfg.VerifyDeliveryKeys),
		worksync.WithEventQueueSize(cfg.EventQueueSize),
		worksync.WithShutdownTimeout(shutdownTimeout),
		worksync.WithTracing(cfg.Tracing),
		worksync.WithTracingStdout(cfg.TracingStdout),
		// Enable metrics with default prometheus registry
		worksync.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}
	if cfg.KeyWrap {
		keyWrapper, err := sops.NewKeyWrapper()
		if err != nil {
			return nil, fmt.Errorf("key wrapping: %w", err)
		}
		opts = append(opts, worksync.WithKeyWrapper(keyWrapper))
	}
	if cfg.RunMode.IsDevMode() {
		scenario, err := devnet.DefaultScenario()
		if err != nil {
			return nil, err
		}
		opts = append(
			opts,
			worksync.WithInMemory(true),
			worksync.WithSeedScenario(scenario),
		)
	}
	return opts, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(
		fmt.Sprintf("config: run mode %s, API %s", cfg.RunMode, cfg.ApiListenAddress),
		"component", "node",
	)
	if cfg.RunMode.IsDevMode() && cfg.TokenSecret == "" {
		logger.Warn(
			"using the built-in dev token secret",
			"component", "node",
		)
	}
	opts, err := nodeOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts = append(
		opts,
		worksync.WithApiListenAddress(cfg.ApiListenAddress),
		worksync.WithTokenSecret(TokenSecret(cfg)),
	)
	shutdownTimeout, err := cfg.ShutdownDuration()
	if err != nil {
		return err
	}
	n, err := worksync.New(worksync.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics listener
	metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "node",
			)
			os.Exit(1)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	runErr := n.Run(signalCtx)
	if runErr != nil {
		logger.Error("node error", "error", runErr)
	} else {
		logger.Info("signal received, initiating graceful shutdown")
	}
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("shutdown complete")
	return nil
}

// Seed loads a demo scenario into the configured store. The bundled scenario
// is used when scenarioPath is empty
func Seed(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	scenarioPath string,
) error {
	if cfg.RunMode.IsDevMode() {
		return errors.New("dev mode keeps the ledger in memory and seeds it at startup")
	}
	var scenario *devnet.Scenario
	var err error
	if scenarioPath != "" {
		scenario, err = devnet.LoadScenario(scenarioPath)
	} else {
		scenario, err = devnet.DefaultScenario()
	}
	if err != nil {
		return err
	}
	opts, err := nodeOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts = append(opts, worksync.WithSeedScenario(scenario))
	n, err := worksync.New(worksync.NewConfig(opts...))
	if err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(runCtx)
	}()
	select {
	case <-n.Ready():
		cancel()
		<-errCh
	case err = <-errCh:
		if err == nil {
			err = ctx.Err()
		}
	}
	return errors.Join(err, n.Stop())
}
