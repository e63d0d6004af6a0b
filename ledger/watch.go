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

	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
)

// DefaultEventPageSize bounds each read of the event log during replay
const DefaultEventPageSize = 500

// Events returns up to limit job events with a log position after the one
// given, oldest first
func (ls *LedgerState) Events(
	ctx context.Context,
	after uint64,
	limit int,
) ([]event.JobEvent, error) {
	var ret []event.JobEvent
	err := ls.view(ctx, "events", func(txn types.StoreTxn) error {
		recs, err := txn.ListEvents(after, limit)
		if err != nil {
			return err
		}
		ret = make([]event.JobEvent, 0, len(recs))
		for _, rec := range recs {
			ret = append(ret, event.JobEventFromRecord(rec))
		}
		return nil
	})
	return ret, err
}

// JobEvents returns the full event history of one job
func (ls *LedgerState) JobEvents(
	ctx context.Context,
	jobID uint64,
) ([]event.JobEvent, error) {
	const op = "jobEvents"
	var ret []event.JobEvent
	err := ls.view(ctx, op, func(txn types.StoreTxn) error {
		if _, err := loadJob(op, txn, jobID); err != nil {
			return err
		}
		recs, err := txn.ListJobEvents(jobID)
		if err != nil {
			return err
		}
		ret = make([]event.JobEvent, 0, len(recs))
		for _, rec := range recs {
			ret = append(ret, event.JobEventFromRecord(rec))
		}
		return nil
	})
	return ret, err
}

// Watch calls handler for every job event after the given log position and
// then for new events as they are committed. Each job's events are
// delivered once and in sequence order. If the live subscription is dropped
// for falling behind, Watch resubscribes and catches up from the log. It
// returns when ctx is done or handler returns an error
func (ls *LedgerState) Watch(
	ctx context.Context,
	after uint64,
	handler func(event.JobEvent) error,
) error {
	bus := ls.config.EventBus
	dedup := event.NewDeduper()
	cursor := after
	for {
		// Subscribe before replaying so that nothing committed in between
		// is missed
		subId, evtCh := bus.Subscribe(event.MarketplaceEventType)
		err := ls.replay(ctx, &cursor, dedup, handler)
		if err == nil {
			err = ls.drain(ctx, evtCh, dedup, handler)
		}
		bus.Unsubscribe(event.MarketplaceEventType, subId)
		if err != nil {
			return err
		}
		ls.config.Logger.Debug(
			"watch subscription dropped, resuming from log",
			"component", "ledger",
			"position", cursor,
		)
	}
}

func (ls *LedgerState) replay(
	ctx context.Context,
	cursor *uint64,
	dedup *event.Deduper,
	handler func(event.JobEvent) error,
) error {
	for {
		evts, err := ls.Events(ctx, *cursor, DefaultEventPageSize)
		if err != nil {
			return err
		}
		for _, evt := range evts {
			*cursor = evt.Position
			if !dedup.Accept(evt) {
				continue
			}
			if err := handler(evt); err != nil {
				return err
			}
		}
		if len(evts) < DefaultEventPageSize {
			return nil
		}
	}
}

// drain delivers live events until ctx is done, handler fails or the
// subscription channel is closed. A closed channel returns nil
func (ls *LedgerState) drain(
	ctx context.Context,
	evtCh <-chan event.Event,
	dedup *event.Deduper,
	handler func(event.JobEvent) error,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-evtCh:
			if !ok {
				return nil
			}
			jobEvt, ok := evt.Data.(event.JobEvent)
			if !ok || !dedup.Accept(jobEvt) {
				continue
			}
			if err := handler(jobEvt); err != nil {
				return err
			}
		}
	}
}
