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
// Package api serves the marketplace ledger over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/worksync/ledger"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultListenAddress = ":8080"
	// DefaultMaxBodySize leaves room for a base64 encoded delivery payload
	DefaultMaxBodySize = 24 << 20
)

type ApiConfig struct {
	ListenAddress string
	// Decimals is the number of decimal places of the unit currency used
	// for amounts in requests and responses
	Decimals    int32
	MaxBodySize int64
}

// Api is the marketplace REST and websocket server
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	ledger     *ledger.LedgerState
	tokens     *TokenAuthority
	validate   *validator.Validate
	httpServer *http.Server
	// streamCancel stops open event streams, which Shutdown does not track
	streamCtx    context.Context
	streamCancel context.CancelFunc
	mu           sync.Mutex
}

func New(
	cfg ApiConfig,
	ls *ledger.LedgerState,
	tokens *TokenAuthority,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = ledger.DefaultDecimals
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	streamCtx, streamCancel := context.WithCancel(context.Background())
	return &Api{
		config:       cfg,
		logger:       logger,
		ledger:       ls,
		tokens:       tokens,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		streamCtx:    streamCtx,
		streamCancel: streamCancel,
	}
}

// Start starts the HTTP server in a background goroutine
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	if a.streamCtx.Err() != nil {
		a.streamCtx, a.streamCancel = context.WithCancel(context.Background())
	}
	a.mu.Unlock()

	if err := a.startServer(server); err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return err
	}
	a.logger.Info(
		"API listener started on " + a.config.ListenAddress,
	)

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server and closes event streams
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	streamCancel := a.streamCancel
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	a.logger.Debug("shutting down API server")
	streamCancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}

// startServer binds the listening socket first so that port conflicts are
// reported by Start, then serves in a background goroutine
func (a *Api) startServer(server *http.Server) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	a.mu.Lock()
	a.config.ListenAddress = ln.Addr().String()
	a.mu.Unlock()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the address the server is listening on
func (a *Api) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config.ListenAddress
}

func (a *Api) streamContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.streamCtx
}
