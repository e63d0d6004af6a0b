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
	"testing"
	"time"

	"github.com/blinklabs-io/worksync/database"
	"github.com/blinklabs-io/worksync/database/memory"
	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/plugin/blob/badger"
	"github.com/blinklabs-io/worksync/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/sealer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	testOperator = "operator"
	alice        = "alice"
	bob          = "bob"
	carol        = "carol"
	dave         = "dave"
)

var testNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

type testBackend struct {
	name     string
	newStore func(t *testing.T) types.Store
}

var testBackends = []testBackend{
	{
		name: "memory",
		newStore: func(t *testing.T) types.Store {
			return memory.New()
		},
	},
	{
		name: "database",
		newStore: func(t *testing.T) types.Store {
			t.Helper()
			metadataStore, err := sqlite.New("", nil, nil)
			require.NoError(t, err)
			blobStore, err := badger.New(badger.WithDataDir(""))
			require.NoError(t, err)
			return database.NewWithStores(nil, blobStore, metadataStore)
		},
	},
}

// forEachBackend runs fn once per storage backend
func forEachBackend(t *testing.T, fn func(t *testing.T, b testBackend)) {
	for _, b := range testBackends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b)
		})
	}
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	ls       *LedgerState
	registry *prometheus.Registry
}

func newHarness(
	t *testing.T,
	b testBackend,
	opts ...func(*LedgerStateConfig),
) *harness {
	t.Helper()
	registry := prometheus.NewRegistry()
	cfg := LedgerStateConfig{
		Store:        b.newStore(t),
		PromRegistry: registry,
		Operator:     testOperator,
		FeeBps:       DefaultFeeBps,
		Now: func() time.Time {
			return testNow
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	ls, err := NewLedgerState(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ls.EventBus().Close()
		_ = ls.Close()
	})
	return &harness{
		t:        t,
		ctx:      context.Background(),
		ls:       ls,
		registry: registry,
	}
}

func (h *harness) register(address string, role models.Role) {
	h.t.Helper()
	_, err := h.ls.Register(h.ctx, address, Profile{Name: address, Role: role})
	require.NoError(h.t, err)
}

func (h *harness) deposit(address string, amount uint64) {
	h.t.Helper()
	_, err := h.ls.Deposit(h.ctx, address, amount)
	require.NoError(h.t, err)
}

func (h *harness) balance(address string) uint64 {
	h.t.Helper()
	bal, err := h.ls.Balance(h.ctx, address)
	require.NoError(h.t, err)
	return bal
}

func (h *harness) job(jobID uint64) *models.Job {
	h.t.Helper()
	job, err := h.ls.GetJob(h.ctx, jobID)
	require.NoError(h.t, err)
	return job
}

func testJobDetails(budget uint64) JobDetails {
	return JobDetails{
		Title:       "Build a landing page",
		Description: "Responsive single page site",
		Category:    models.Category(0),
		Skills:      []string{"html", "css"},
		Budget:      budget,
		Deadline:    testNow.Add(30 * 24 * time.Hour),
	}
}

// setupUsers registers alice as a client with funds and bob and carol as
// freelancers
func (h *harness) setupUsers(funds uint64) {
	h.t.Helper()
	h.register(alice, models.RoleBoth)
	h.register(bob, models.RoleFreelancer)
	h.register(carol, models.RoleFreelancer)
	h.deposit(alice, funds)
}

func (h *harness) postJob(owner string, budget uint64) *models.Job {
	h.t.Helper()
	job, err := h.ls.PostJob(h.ctx, owner, testJobDetails(budget))
	require.NoError(h.t, err)
	return job
}

func (h *harness) apply(applicant string, jobID uint64) {
	h.t.Helper()
	_, err := h.ls.ApplyForJob(h.ctx, applicant, jobID, ApplicationDetails{
		Proposal:     "I can do this",
		BidAmount:    1,
		DeliveryDays: 7,
	})
	require.NoError(h.t, err)
}

// acceptedJob posts a job for alice and selects bob
func (h *harness) acceptedJob(budget uint64) *models.Job {
	h.t.Helper()
	job := h.postJob(alice, budget)
	h.apply(bob, job.ID)
	job, err := h.ls.SelectFreelancer(h.ctx, alice, job.ID, bob)
	require.NoError(h.t, err)
	return job
}

// submit seals payload and submits it as bob's delivery
func (h *harness) submit(jobID uint64, payload []byte) *sealer.Sealed {
	h.t.Helper()
	sealed, err := sealer.Seal(payload)
	require.NoError(h.t, err)
	_, err = h.ls.SubmitWork(h.ctx, bob, jobID, Submission{
		Payload:    sealed.Ciphertext,
		Commitment: sealed.Commitment,
	})
	require.NoError(h.t, err)
	return sealed
}

// deliveredJob takes a job through to a shared key, ready for completion
func (h *harness) deliveredJob(budget uint64) *models.Job {
	h.t.Helper()
	job := h.acceptedJob(budget)
	sealed := h.submit(job.ID, []byte("the finished work"))
	require.NoError(h.t, h.ls.ShareDecryptionKey(h.ctx, bob, job.ID, sealed.Key))
	return h.job(job.ID)
}

// requireConserved checks that spendable balances plus escrow add up to the
// total deposited minus withdrawals
func (h *harness) requireConserved(total uint64, addresses ...string) {
	h.t.Helper()
	stats, err := h.ls.Stats(h.ctx)
	require.NoError(h.t, err)
	sum := stats.EscrowHeld + stats.TreasuryBalance
	for _, address := range addresses {
		sum += h.balance(address)
	}
	require.Equal(h.t, total, sum)
}

func (h *harness) requireKind(err error, target error) {
	h.t.Helper()
	require.Error(h.t, err)
	require.ErrorIs(h.t, err, target)
}
