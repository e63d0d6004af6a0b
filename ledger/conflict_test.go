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
	"sync"
	"testing"

	"github.com/blinklabs-io/worksync/database/memory"
	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflightGuard(t *testing.T) {
	g := newInflightGuard()
	release, ok := g.tryAcquire(jobKey(1), userKey(alice))
	require.True(t, ok)
	_, ok = g.tryAcquire(jobKey(2), userKey(alice))
	assert.False(t, ok)
	// A refused acquire must not leave jobKey(2) held
	release2, ok := g.tryAcquire(jobKey(2))
	require.True(t, ok)
	release2()
	release()
	release, ok = g.tryAcquire(userKey(alice))
	require.True(t, ok)
	release()
}

func TestBusyJobConflicts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b)
		h.setupUsers(1_000)
		job := h.postJob(alice, 1_000)
		release, ok := h.ls.guard.tryAcquire(jobKey(job.ID))
		require.True(t, ok)
		_, err := h.ls.CancelJob(h.ctx, alice, job.ID)
		h.requireKind(err, ErrConflict)
		assert.True(t, IsRetryable(err))
		assert.Equal(t, "Conflict", Kind(err))
		release()
		_, err = h.ls.CancelJob(h.ctx, alice, job.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1, testutil.ToFloat64(h.ls.metrics.conflicts), 0)
	})
}

func TestConcurrentCompletePaysOnce(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b)
		h.setupUsers(1_000_000)
		job := h.deliveredJob(1_000_000)
		const callers = 8
		var wg sync.WaitGroup
		errs := make([]error, callers)
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = h.ls.CompleteJob(h.ctx, alice, job.ID)
			}()
		}
		wg.Wait()
		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(
				t,
				Kind(err) == "Conflict" || Kind(err) == "InvalidState",
				"unexpected error: %v", err,
			)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, uint64(975_000), h.balance(bob))
		h.requireConserved(1_000_000, alice, bob, carol)
	})
}

// staleStore reports every job update as stale
type staleStore struct {
	types.Store
}

func (s staleStore) Update(
	ctx context.Context,
	fn func(types.StoreTxn) error,
) error {
	return s.Store.Update(ctx, func(txn types.StoreTxn) error {
		return fn(staleTxn{StoreTxn: txn})
	})
}

type staleTxn struct {
	types.StoreTxn
}

func (staleTxn) UpdateJob(*models.Job) error {
	return types.ErrVersionConflict
}

func TestVersionConflictIsRetryable(t *testing.T) {
	store := memory.New()
	h := newHarness(t, testBackend{
		name: "stale",
		newStore: func(*testing.T) types.Store {
			return staleStore{Store: store}
		},
	})
	h.setupUsers(1_000)
	_, err := h.ls.PostJob(h.ctx, alice, testJobDetails(1_000))
	h.requireKind(err, ErrConflict)
	assert.True(t, IsRetryable(err))
	// The failed post rolled back the escrow hold
	assert.Equal(t, uint64(1_000), h.balance(alice))
	total, err := h.ls.TotalJobs(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), total)
}
