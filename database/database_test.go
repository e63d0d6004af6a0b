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
package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/blinklabs-io/worksync/database"
	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/plugin/blob/badger"
	"github.com/blinklabs-io/worksync/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	metadataStore, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	blobStore, err := badger.New(badger.WithDataDir(""))
	require.NoError(t, err)
	db := database.NewWithStores(nil, blobStore, metadataStore)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestUpdateCommitAndRollback(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		if err := txn.CreateUser(&models.User{Address: "addr1", Name: "Alice"}); err != nil {
			return err
		}
		return txn.SetBalance("addr1", 1000)
	}))
	errBoom := errors.New("boom")
	err := db.Update(ctx, func(txn types.StoreTxn) error {
		require.NoError(t, txn.SetBalance("addr1", 1))
		require.NoError(t, txn.CreateUser(&models.User{Address: "addr2"}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.NoError(t, db.View(ctx, func(txn types.StoreTxn) error {
		bal, err := txn.GetBalance("addr1")
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), bal)
		_, err = txn.GetUser("addr2")
		assert.ErrorIs(t, err, types.ErrNotFound)
		count, err := txn.CountUsers()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
		return nil
	}))
}

func TestViewIsReadOnly(t *testing.T) {
	db := newTestDatabase(t)
	err := db.View(context.Background(), func(txn types.StoreTxn) error {
		return txn.SetBalance("addr1", 5)
	})
	require.ErrorIs(t, err, types.ErrReadOnlyTxn)
}

func TestUserDuplicateAndUpdate(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		return txn.CreateUser(&models.User{
			Address: "addr1",
			Skills:  []string{"go"},
		})
	}))
	err := db.Update(ctx, func(txn types.StoreTxn) error {
		return txn.CreateUser(&models.User{Address: "addr1"})
	})
	require.ErrorIs(t, err, types.ErrAlreadyExists)
	err = db.Update(ctx, func(txn types.StoreTxn) error {
		return txn.UpdateUser(&models.User{Address: "missing"})
	})
	require.ErrorIs(t, err, types.ErrNotFound)
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		user, err := txn.GetUser("addr1")
		if err != nil {
			return err
		}
		user.Skills = append(user.Skills, "sql")
		user.CompletedJobs = 3
		return txn.UpdateUser(user)
	}))
	require.NoError(t, db.View(ctx, func(txn types.StoreTxn) error {
		user, err := txn.GetUser("addr1")
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "sql"}, user.Skills)
		assert.Equal(t, uint64(3), user.CompletedJobs)
		return nil
	}))
}

func TestJobVersionAndFilter(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	var job models.Job
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		for i := range 3 {
			tmp := models.Job{
				Owner:    "addr1",
				Budget:   uint64(100 * (i + 1)),
				Category: models.Category(i),
			}
			if err := txn.CreateJob(&tmp); err != nil {
				return err
			}
			if i == 0 {
				job = tmp
			}
		}
		return nil
	}))
	assert.Equal(t, uint64(1), job.ID)
	assert.Equal(t, uint64(1), job.Version)
	stale := job
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		job.Status = models.JobStatusAccepted
		job.Freelancer = "addr2"
		return txn.UpdateJob(&job)
	}))
	assert.Equal(t, uint64(2), job.Version)
	err := db.Update(ctx, func(txn types.StoreTxn) error {
		stale.Status = models.JobStatusCancelled
		return txn.UpdateJob(&stale)
	})
	require.ErrorIs(t, err, types.ErrVersionConflict)
	assert.Equal(t, uint64(1), stale.Version)
	err = db.Update(ctx, func(txn types.StoreTxn) error {
		return txn.UpdateJob(&models.Job{ID: 99, Version: 1})
	})
	require.ErrorIs(t, err, types.ErrNotFound)
	require.NoError(t, db.View(ctx, func(txn types.StoreTxn) error {
		jobs, err := txn.ListJobs(models.JobFilter{Freelancer: "addr2"})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, models.JobStatusAccepted, jobs[0].Status)
		status := models.JobStatusPosted
		jobs, err = txn.ListJobs(models.JobFilter{Status: &status, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, uint64(3), jobs[0].ID)
		count, err := txn.CountJobs()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), count)
		return nil
	}))
}

func TestLedgerEntriesNewestFirst(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		entries := []models.LedgerEntry{
			{Kind: models.EntryKindDeposit, To: "addr1", Amount: 10},
			{Kind: models.EntryKindEscrowHold, From: "addr1", JobID: 1, Amount: 5},
			{Kind: models.EntryKindDeposit, To: "addr2", Amount: 7},
		}
		for i := range entries {
			if err := txn.AddLedgerEntry(&entries[i]); err != nil {
				return err
			}
		}
		return nil
	}))
	require.NoError(t, db.View(ctx, func(txn types.StoreTxn) error {
		entries, err := txn.ListLedgerEntries("addr1", 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.EntryKindEscrowHold, entries[0].Kind)
		entries, err = txn.ListLedgerEntries("", 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "addr2", entries[0].To)
		return nil
	}))
}

func TestDeliveryPayloadAndUpsert(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	key := types.DeliveryBlobKey(1, []byte{0x01, 0x02})
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		if err := txn.PutPayload(key, []byte("ciphertext")); err != nil {
			return err
		}
		return txn.PutDelivery(&models.Delivery{
			JobID:      1,
			PayloadKey: key,
			Revision:   1,
		})
	}))
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		return txn.PutDelivery(&models.Delivery{
			JobID:      1,
			PayloadKey: key,
			Revision:   2,
			Status:     models.DeliveryStatusPending,
		})
	}))
	require.NoError(t, db.View(ctx, func(txn types.StoreTxn) error {
		delivery, err := txn.GetDelivery(1)
		require.NoError(t, err)
		assert.Equal(t, uint32(2), delivery.Revision)
		data, err := txn.GetPayload(delivery.PayloadKey)
		require.NoError(t, err)
		assert.Equal(t, []byte("ciphertext"), data)
		_, err = txn.GetPayload("delivery/2/00")
		assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
		_, err = txn.GetDispute(1)
		assert.ErrorIs(t, err, types.ErrNotFound)
		return nil
	}))
}

func TestReviewsAndEvents(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.Update(ctx, func(txn types.StoreTxn) error {
		if err := txn.CreateReview(&models.Review{
			JobID:    1,
			Reviewer: "addr1",
			Reviewee: "addr2",
			Rating:   450,
		}); err != nil {
			return err
		}
		for seq := uint64(1); seq <= 2; seq++ {
			if err := txn.AppendEvent(&models.EventRecord{
				JobID:    1,
				Sequence: seq,
				Type:     "job.posted",
			}); err != nil {
				return err
			}
		}
		return txn.AppendEvent(&models.EventRecord{JobID: 2, Sequence: 1})
	}))
	err := db.Update(ctx, func(txn types.StoreTxn) error {
		return txn.CreateReview(&models.Review{JobID: 1, Reviewer: "addr1"})
	})
	require.ErrorIs(t, err, types.ErrAlreadyExists)
	err = db.Update(ctx, func(txn types.StoreTxn) error {
		return txn.AppendEvent(&models.EventRecord{JobID: 1, Sequence: 2})
	})
	require.ErrorIs(t, err, types.ErrAlreadyExists)
	require.NoError(t, db.View(ctx, func(txn types.StoreTxn) error {
		reviews, err := txn.ListReviewsByReviewee("addr2")
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, uint16(450), reviews[0].Rating)
		events, err := txn.ListEvents(1, 0)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, uint64(2), events[0].Position)
		assert.Equal(t, uint64(2), events[1].JobID)
		events, err = txn.ListJobEvents(1)
		require.NoError(t, err)
		assert.Len(t, events, 2)
		return nil
	}))
}

func TestClosedDatabase(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
	err := db.View(context.Background(), func(types.StoreTxn) error {
		return nil
	})
	require.ErrorIs(t, err, types.ErrNoStoreAvailable)
}

var _ types.Store = (*database.Database)(nil)
