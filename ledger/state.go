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
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTreasury       = "treasury"
	DefaultMaxPayloadSize = 16 << 20
	DefaultPublishTimeout = 250 * time.Millisecond

	tracerName = "github.com/blinklabs-io/worksync/ledger"
)

// KeyWrapper protects delivery keys at rest
type KeyWrapper interface {
	Wrap(key []byte) ([]byte, error)
	Unwrap(wrapped []byte) ([]byte, error)
}

type LedgerStateConfig struct {
	Logger          *slog.Logger
	Store           types.Store
	EventBus        *event.EventBus
	PromRegistry    prometheus.Registerer
	KeyWrapper      KeyWrapper
	ReputationTiers []ReputationTier
	// Treasury receives platform fees
	Treasury string
	// Operator may deposit funds and resolve disputes
	Operator       string
	FeeBps         uint64
	MaxPayloadSize uint64
	// VerifyDeliveryKeys makes the ledger open stored ciphertexts with shared
	// keys and check them against the delivery commitment
	VerifyDeliveryKeys bool
	// PublishTimeout caps how long a job event waits on a full subscriber
	// buffer. Events are published while the job's in-flight guard is held,
	// so a stalled subscriber makes other calls on that job fail with
	// Conflict for up to this long. Watch recovers dropped subscriptions
	// from the event log
	PublishTimeout time.Duration
	// Now overrides the clock, mostly for tests
	Now func() time.Time
}

type LedgerState struct {
	config  LedgerStateConfig
	store   types.Store
	guard   *inflightGuard
	tracer  trace.Tracer
	metrics stateMetrics
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Store == nil {
		return nil, errors.New("ledger store is required")
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.EventBus == nil {
		cfg.EventBus = event.NewEventBus(cfg.PromRegistry, cfg.Logger)
	}
	if cfg.FeeBps > MaxFeeBps {
		return nil, fmt.Errorf(
			"platform fee %d bps exceeds %d",
			cfg.FeeBps,
			MaxFeeBps,
		)
	}
	if cfg.Treasury == "" {
		cfg.Treasury = DefaultTreasury
	}
	if cfg.MaxPayloadSize == 0 {
		cfg.MaxPayloadSize = DefaultMaxPayloadSize
	}
	if len(cfg.ReputationTiers) == 0 {
		cfg.ReputationTiers = DefaultReputationTiers
	}
	if err := ValidateReputationTiers(cfg.ReputationTiers); err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}
	for _, eventType := range append(
		[]event.EventType{event.MarketplaceEventType},
		event.JobEventTypes()...,
	) {
		if cfg.EventBus.DeliveryTimeout(eventType) > cfg.PublishTimeout {
			cfg.EventBus.SetDeliveryTimeout(eventType, cfg.PublishTimeout)
		}
	}
	ls := &LedgerState{
		config: cfg,
		store:  cfg.Store,
		guard:  newInflightGuard(),
		tracer: otel.Tracer(tracerName),
	}
	ls.metrics.init(cfg.PromRegistry)
	if err := ls.loadEscrowGauge(context.Background()); err != nil {
		return nil, err
	}
	return ls, nil
}

func (ls *LedgerState) loadEscrowGauge(ctx context.Context) error {
	stats, err := ls.Stats(ctx)
	if err != nil {
		return fmt.Errorf("load ledger stats: %w", err)
	}
	ls.metrics.escrowHeld.Set(float64(stats.EscrowHeld))
	return nil
}

func (ls *LedgerState) EventBus() *event.EventBus {
	return ls.config.EventBus
}

// Treasury returns the address that receives platform fees
func (ls *LedgerState) Treasury() string {
	return ls.config.Treasury
}

// Operator returns the platform operator address, if any
func (ls *LedgerState) Operator() string {
	return ls.config.Operator
}

// IsOperator returns true if address is the configured operator
func (ls *LedgerState) IsOperator(address string) bool {
	return ls.config.Operator != "" && address == ls.config.Operator
}

func (ls *LedgerState) Close() error {
	return ls.store.Close()
}

func (ls *LedgerState) now() time.Time {
	return ls.config.Now().UTC()
}

// txnContext collects the job events and notices produced by one mutation
type txnContext struct {
	txn     types.StoreTxn
	ls      *LedgerState
	now     time.Time
	events  []event.JobEvent
	notices []event.Event
	// escrowDelta is applied to the escrow gauge after commit
	escrowDelta int64
	payout      uint64
	fee         uint64
	refund      uint64
}

// emit appends the next event for job to the log. The caller must save the
// job afterwards so that its EventSeq is persisted
func (tc *txnContext) emit(
	job *models.Job,
	eventType event.EventType,
	actor string,
	data any,
) error {
	evt, err := event.NewJobEvent(eventType, job.ID, actor, data)
	if err != nil {
		return err
	}
	job.EventSeq++
	evt.Sequence = job.EventSeq
	evt.Timestamp = tc.now
	rec := evt.Record()
	if err := tc.txn.AppendEvent(&rec); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	evt.Position = rec.Position
	tc.events = append(tc.events, evt)
	return nil
}

func (tc *txnContext) notify(eventType event.EventType, data any) {
	tc.notices = append(tc.notices, event.NewEvent(eventType, data))
}

// saveJob stores job, stamping its update time
func (tc *txnContext) saveJob(job *models.Job) error {
	job.UpdatedAt = tc.now
	return tc.txn.UpdateJob(job)
}

// credit adds amount to the balance of address
func (tc *txnContext) credit(address string, amount uint64) error {
	balance, err := tc.txn.GetBalance(address)
	if err != nil {
		return err
	}
	balance, err = addBalance(balance, amount)
	if err != nil {
		return err
	}
	return tc.txn.SetBalance(address, balance)
}

// debit removes amount from the balance of address
func (tc *txnContext) debit(address string, amount uint64) error {
	balance, err := tc.txn.GetBalance(address)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	return tc.txn.SetBalance(address, balance-amount)
}

func (tc *txnContext) journal(
	kind models.EntryKind,
	jobID uint64,
	from string,
	to string,
	amount uint64,
) error {
	return tc.txn.AddLedgerEntry(&models.LedgerEntry{
		CreatedAt: tc.now,
		Kind:      kind,
		JobID:     jobID,
		From:      from,
		To:        to,
		Amount:    amount,
	})
}

// mutate runs fn in a store transaction while holding the in-flight guard
// for keys. Job events are published after commit, before the guard is
// released, so that observers see each job's events in commit order
func (ls *LedgerState) mutate(
	ctx context.Context,
	op string,
	keys []string,
	fn func(*txnContext) error,
) error {
	start := time.Now()
	ctx, span := ls.tracer.Start(
		ctx,
		"ledger."+op,
		trace.WithAttributes(attribute.StringSlice("worksync.keys", keys)),
	)
	defer span.End()
	err := ls.doMutate(ctx, op, keys, fn)
	ls.metrics.operationLatency.WithLabelValues(op).Observe(
		time.Since(start).Seconds(),
	)
	result := "ok"
	if err != nil {
		result = Kind(err)
		if result == "" {
			result = "error"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	ls.metrics.operations.WithLabelValues(op, result).Inc()
	return err
}

func (ls *LedgerState) doMutate(
	ctx context.Context,
	op string,
	keys []string,
	fn func(*txnContext) error,
) error {
	release, ok := ls.guard.tryAcquire(keys...)
	if !ok {
		ls.metrics.conflicts.Inc()
		return newError(op, ErrConflict)
	}
	defer release()
	tc := &txnContext{ls: ls, now: ls.now()}
	err := ls.store.Update(ctx, func(txn types.StoreTxn) error {
		// Reset in case the backend retries the function
		tc.txn = txn
		tc.events = nil
		tc.notices = nil
		tc.escrowDelta, tc.payout, tc.fee, tc.refund = 0, 0, 0, 0
		return fn(tc)
	})
	if err != nil {
		return ls.wrapError(op, err)
	}
	ls.metrics.escrowHeld.Add(float64(tc.escrowDelta))
	ls.metrics.payoutsTotal.Add(float64(tc.payout))
	ls.metrics.feesTotal.Add(float64(tc.fee))
	ls.metrics.refundsTotal.Add(float64(tc.refund))
	ls.metrics.eventsEmitted.Add(float64(len(tc.events)))
	ls.publish(tc)
	return nil
}

func (ls *LedgerState) wrapError(op string, err error) error {
	var ledgerErr *Error
	switch {
	case errors.As(err, &ledgerErr):
		return err
	case errors.Is(err, types.ErrVersionConflict):
		ls.metrics.conflicts.Inc()
		return newError(op, ErrConflict)
	case Kind(err) != "":
		return newError(op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (ls *LedgerState) publish(tc *txnContext) {
	bus := ls.config.EventBus
	for _, evt := range tc.events {
		bus.Publish(
			event.MarketplaceEventType,
			event.NewEvent(event.MarketplaceEventType, evt),
		)
		bus.Publish(evt.Type, event.NewEvent(evt.Type, evt))
		ls.config.Logger.Debug(
			"job event",
			"component", "ledger",
			"type", evt.Type,
			"job_id", evt.JobID,
			"sequence", evt.Sequence,
			"position", evt.Position,
		)
	}
	for _, notice := range tc.notices {
		bus.PublishAsync(notice.Type, notice)
	}
}

// view runs fn in a read-only store transaction
func (ls *LedgerState) view(
	ctx context.Context,
	op string,
	fn func(types.StoreTxn) error,
) error {
	if err := ls.store.View(ctx, fn); err != nil {
		return ls.wrapError(op, err)
	}
	return nil
}

// loadJob fetches a job, translating a missing record
func loadJob(op string, txn types.StoreTxn, jobID uint64) (*models.Job, error) {
	job, err := txn.GetJob(jobID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, &Error{Op: op, Err: ErrJobNotFound, JobID: jobID}
		}
		return nil, err
	}
	return job, nil
}

// loadUser fetches a registered user, translating a missing record
func loadUser(op string, txn types.StoreTxn, address string) (*models.User, error) {
	user, err := txn.GetUser(address)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, newError(op, ErrNotRegistered)
		}
		return nil, err
	}
	return user, nil
}
