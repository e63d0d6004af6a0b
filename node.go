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
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/worksync/api"
	"github.com/blinklabs-io/worksync/database"
	"github.com/blinklabs-io/worksync/database/memory"
	"github.com/blinklabs-io/worksync/database/plugin"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
	"github.com/blinklabs-io/worksync/internal/devnet"
	"github.com/blinklabs-io/worksync/ledger"
)

type Node struct {
	eventBus      *event.EventBus
	store         types.Store
	ledgerState   *ledger.LedgerState
	tokens        *api.TokenAuthority
	api           *api.Api
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	ready         chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	var busOpts []event.EventBusOptionFunc
	if cfg.eventQueueSize > 0 {
		busOpts = append(busOpts, event.WithQueueSize(cfg.eventQueueSize))
	}
	n := &Node{
		config: cfg,
		eventBus: event.NewEventBus(
			cfg.promRegistry,
			cfg.logger,
			busOpts...,
		),
		done:  make(chan struct{}),
		ready: make(chan struct{}),
	}
	if len(cfg.tokenSecret) > 0 {
		tokens, err := api.NewTokenAuthority(cfg.tokenSecret)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		n.tokens = tokens
	}
	return n, nil
}

// Run opens the store and ledger, starts the API and blocks until ctx is
// done or Stop is called
func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load store
	store, err := n.openStore()
	if err != nil {
		return err
	}
	n.store = store
	// Load ledger
	ls, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:             n.config.logger,
			Store:              n.store,
			EventBus:           n.eventBus,
			PromRegistry:       n.config.promRegistry,
			KeyWrapper:         n.config.keyWrapper,
			ReputationTiers:    n.config.reputationTiers,
			Treasury:           n.config.treasury,
			Operator:           n.config.operator,
			FeeBps:             n.config.feeBps,
			MaxPayloadSize:     n.config.maxPayloadSize,
			VerifyDeliveryKeys: n.config.verifyDeliveryKeys,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	n.ledgerState = ls
	// Load demo data
	if n.config.seedScenario != nil {
		_, err := devnet.Seed(ctx, n.ledgerState, n.config.seedScenario, devnet.SeedConfig{
			Logger:   n.config.logger,
			Decimals: n.config.decimals,
		})
		switch {
		case errors.Is(err, devnet.ErrAlreadySeeded):
			n.config.logger.Info(
				"skipping demo data: "+err.Error(),
				"component", "node",
			)
		case err != nil:
			return fmt.Errorf("failed to seed ledger: %w", err)
		}
	}
	// Configure API
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.ApiConfig{
				ListenAddress: n.config.apiListenAddress,
				Decimals:      n.config.decimals,
			},
			n.ledgerState,
			n.tokens,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API: %w", err)
		}
	}
	close(n.ready)

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// openStore returns the in-memory store or the database built from the
// configured plugins
func (n *Node) openStore() (types.Store, error) {
	if n.config.inMemory {
		n.config.logger.Info(
			"using in-memory ledger store",
			"component", "node",
		)
		return memory.New(memory.WithLogger(n.config.logger)), nil
	}
	blobPlugin := n.config.blobPlugin
	if blobPlugin == "" {
		blobPlugin = database.DefaultBlobPlugin
	}
	metadataPlugin := n.config.metadataPlugin
	if metadataPlugin == "" {
		metadataPlugin = database.DefaultMetadataPlugin
	}
	if n.config.dataDir != "" {
		// Plugins without a data-dir option ignore these
		if err := plugin.SetPluginOption(
			plugin.PluginTypeBlob,
			blobPlugin,
			"data-dir",
			filepath.Join(n.config.dataDir, "blob"),
		); err != nil {
			return nil, err
		}
		if err := plugin.SetPluginOption(
			plugin.PluginTypeMetadata,
			metadataPlugin,
			"data-dir",
			n.config.dataDir,
		); err != nil {
			return nil, err
		}
	}
	db, err := database.New(n.config.logger, blobPlugin, metadataPlugin)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Ready returns a channel that is closed once the ledger and API are running
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// LedgerState returns the running ledger, or nil before Run has loaded it
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

// Tokens returns the API token authority, or nil without a token secret
func (n *Node) Tokens() *api.TokenAuthority {
	return n.tokens
}

// ApiAddr returns the bound API address, or an empty string when the API is disabled
func (n *Node) ApiAddr() string {
	if n.api == nil {
		return ""
	}
	return n.api.Addr()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Close the ledger store
	if n.ledgerState != nil {
		if closeErr := n.ledgerState.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("ledger state close: %w", closeErr),
			)
		}
	} else if n.store != nil {
		if closeErr := n.store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("store close: %w", closeErr))
		}
	}

	// Phase 3: Cleanup resources
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Close()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
