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
	"testing"
	"time"

	"github.com/blinklabs-io/worksync/event"
	"github.com/blinklabs-io/worksync/internal/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchTimeout = testutil.DefaultTimeout

func receiveEvents(t *testing.T, ch <-chan event.JobEvent, count int) []event.JobEvent {
	t.Helper()
	return testutil.ReceiveN(t, ch, count, watchTimeout)
}

func TestEventsPaging(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b)
		h.setupUsers(1_000)
		first := h.postJob(alice, 500)
		second := h.postJob(alice, 500)
		h.apply(bob, first.ID)
		evts, err := h.ls.Events(h.ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, evts, 3)
		assert.Equal(t, second.ID, evts[1].JobID)
		for i := 1; i < len(evts); i++ {
			assert.Greater(t, evts[i].Position, evts[i-1].Position)
		}
		page, err := h.ls.Events(h.ctx, evts[0].Position, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, evts[1], page[0])
		_, err = h.ls.JobEvents(h.ctx, 99)
		h.requireKind(err, ErrJobNotFound)
	})
}

func TestWatchReplaysThenFollows(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b)
		h.setupUsers(1_000)
		job := h.postJob(alice, 1_000)
		h.apply(bob, job.ID)
		ctx, cancel := context.WithCancel(h.ctx)
		defer cancel()
		received := make(chan event.JobEvent, 16)
		done := make(chan error, 1)
		go func() {
			done <- h.ls.Watch(ctx, 0, func(evt event.JobEvent) error {
				received <- evt
				return nil
			})
		}()
		replayed := receiveEvents(t, received, 2)
		assert.Equal(t, event.JobPostedEventType, replayed[0].Type)
		assert.Equal(t, event.JobAppliedEventType, replayed[1].Type)
		_, err := h.ls.SelectFreelancer(h.ctx, alice, job.ID, bob)
		require.NoError(t, err)
		live := receiveEvents(t, received, 1)
		assert.Equal(t, event.FreelancerSelectedEventType, live[0].Type)
		assert.Equal(t, uint64(3), live[0].Sequence)
		cancel()
		err = testutil.RequireReceive(t, done, watchTimeout, "watch did not stop")
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, received)
	})
}

func TestWatchFromPosition(t *testing.T) {
	h := newHarness(t, testBackends[0])
	h.setupUsers(1_000)
	job := h.postJob(alice, 1_000)
	h.apply(bob, job.ID)
	evts, err := h.ls.Events(h.ctx, 0, 0)
	require.NoError(t, err)
	errStop := errors.New("stop")
	var got []event.JobEvent
	err = h.ls.Watch(h.ctx, evts[0].Position, func(evt event.JobEvent) error {
		got = append(got, evt)
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	require.Len(t, got, 1)
	assert.Equal(t, event.JobAppliedEventType, got[0].Type)
}

func TestWatchRecoversDroppedSubscription(t *testing.T) {
	h := newHarness(t, testBackends[0], func(cfg *LedgerStateConfig) {
		cfg.EventBus = event.NewEventBus(
			nil,
			nil,
			event.WithQueueSize(1),
			event.WithDeliveryTimeout(0),
		)
	})
	h.setupUsers(1_000)
	job := h.postJob(alice, 1_000)
	h.apply(carol, job.ID)
	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()
	started := make(chan struct{})
	gate := make(chan struct{})
	received := make(chan event.JobEvent, 16)
	done := make(chan error, 1)
	go func() {
		first := true
		done <- h.ls.Watch(ctx, 0, func(evt event.JobEvent) error {
			if first {
				first = false
				close(started)
				<-gate
			}
			received <- evt
			return nil
		})
	}()
	testutil.RequireClosed(t, started, watchTimeout, "watch to start")
	// The watcher is blocked, so the second live event overflows its queue
	// and the subscription is dropped
	h.apply(bob, job.ID)
	_, err := h.ls.SelectFreelancer(h.ctx, alice, job.ID, bob)
	require.NoError(t, err)
	close(gate)
	evts := receiveEvents(t, received, 4)
	for i, evt := range evts {
		assert.Equal(t, uint64(i+1), evt.Sequence)
	}
	cancel()
	err = testutil.RequireReceive(t, done, watchTimeout, "watch did not stop")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, received)
}

func TestStalledSubscriberDoesNotHoldJob(t *testing.T) {
	h := newHarness(t, testBackends[0], func(cfg *LedgerStateConfig) {
		cfg.EventBus = event.NewEventBus(nil, nil, event.WithQueueSize(1))
		cfg.PublishTimeout = 50 * time.Millisecond
	})
	bus := h.ls.EventBus()
	assert.Equal(t, 50*time.Millisecond, bus.DeliveryTimeout(event.MarketplaceEventType))
	assert.Equal(t, 50*time.Millisecond, bus.DeliveryTimeout(event.JobAppliedEventType))
	assert.Equal(t, event.DefaultDeliveryTimeout, bus.DeliveryTimeout(event.UserRegisteredEventType))

	h.setupUsers(1_000)
	job := h.postJob(alice, 1_000)
	// Never read: the first event fills the buffer
	_, stalled := bus.Subscribe(event.MarketplaceEventType)
	h.apply(bob, job.ID)
	start := time.Now()
	h.apply(carol, job.ID)
	assert.Less(t, time.Since(start), event.DefaultDeliveryTimeout)
	// The job is free again as soon as the stalled subscriber is dropped
	_, err := h.ls.SelectFreelancer(h.ctx, alice, job.ID, bob)
	require.NoError(t, err)
	testutil.RequireReceive(t, stalled, watchTimeout, "buffered event")
	_, ok := <-stalled
	assert.False(t, ok)
}
