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
	"bytes"
	"errors"
	"testing"

	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/sealer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotWrapped = errors.New("key is not wrapped")

// xorWrapper stands in for the sops key wrapper
type xorWrapper struct{}

var wrapPrefix = []byte("wrapped:")

func (xorWrapper) Wrap(key []byte) ([]byte, error) {
	ret := append([]byte{}, wrapPrefix...)
	for _, b := range key {
		ret = append(ret, b^0x5a)
	}
	return ret, nil
}

func (xorWrapper) Unwrap(wrapped []byte) ([]byte, error) {
	if !bytes.HasPrefix(wrapped, wrapPrefix) {
		return nil, errNotWrapped
	}
	ret := make([]byte, 0, len(wrapped)-len(wrapPrefix))
	for _, b := range wrapped[len(wrapPrefix):] {
		ret = append(ret, b^0x5a)
	}
	return ret, nil
}

func TestSubmitWorkValidation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b, func(cfg *LedgerStateConfig) {
			cfg.MaxPayloadSize = 64
		})
		h.setupUsers(1_000)
		job := h.acceptedJob(1_000)
		commitment := sealer.Commit([]byte("work"))
		testDefs := []Submission{
			{Payload: nil, Commitment: commitment},
			{Payload: make([]byte, 65), Commitment: commitment},
			{Payload: []byte("ciphertext"), Commitment: commitment[:8]},
		}
		for _, testDef := range testDefs {
			_, err := h.ls.SubmitWork(h.ctx, bob, job.ID, testDef)
			h.requireKind(err, ErrInvalidDelivery)
		}
		sealed := h.submit(job.ID, []byte("work"))
		err := h.ls.ShareDecryptionKey(h.ctx, alice, job.ID, sealed.Key)
		h.requireKind(err, ErrNotSelectedFreelancer)
		err = h.ls.ShareDecryptionKey(h.ctx, bob, job.ID, nil)
		h.requireKind(err, ErrInvalidDelivery)
		err = h.ls.RejectDelivery(h.ctx, bob, job.ID, "")
		h.requireKind(err, ErrNotOwner)
		_, err = h.ls.GetDelivery(h.ctx, carol, job.ID)
		h.requireKind(err, ErrNotParticipant)
	})
}

func TestShareKeyVerified(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b, func(cfg *LedgerStateConfig) {
			cfg.VerifyDeliveryKeys = true
		})
		h.setupUsers(1_000)
		job := h.acceptedJob(1_000)
		sealed := h.submit(job.ID, []byte("verified work"))
		wrongKey, err := sealer.NewKey()
		require.NoError(t, err)
		err = h.ls.ShareDecryptionKey(h.ctx, bob, job.ID, wrongKey)
		h.requireKind(err, ErrKeyMismatch)
		_, err = h.ls.CompleteJob(h.ctx, alice, job.ID)
		h.requireKind(err, ErrKeyNotShared)
		require.NoError(t, h.ls.ShareDecryptionKey(h.ctx, bob, job.ID, sealed.Key))
		view, err := h.ls.GetDelivery(h.ctx, alice, job.ID)
		require.NoError(t, err)
		plaintext, err := sealer.Open(view.Payload, view.Key)
		require.NoError(t, err)
		assert.Equal(t, []byte("verified work"), plaintext)
	})
}

func TestShareKeyWrapped(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b, func(cfg *LedgerStateConfig) {
			cfg.KeyWrapper = xorWrapper{}
		})
		h.setupUsers(1_000)
		job := h.acceptedJob(1_000)
		sealed := h.submit(job.ID, []byte("wrapped work"))
		require.NoError(t, h.ls.ShareDecryptionKey(h.ctx, bob, job.ID, sealed.Key))
		require.NoError(t, h.ls.store.View(h.ctx, func(txn types.StoreTxn) error {
			delivery, err := txn.GetDelivery(job.ID)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(delivery.Key, wrapPrefix))
			assert.NotEqual(t, sealed.Key, delivery.Key)
			return nil
		}))
		view, err := h.ls.GetDelivery(h.ctx, bob, job.ID)
		require.NoError(t, err)
		assert.Equal(t, sealed.Key, view.Key)
		assert.Nil(t, view.Delivery.Key)
	})
}
