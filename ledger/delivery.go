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

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
	"github.com/blinklabs-io/worksync/sealer"
)

type Submission struct {
	// Payload is the encrypted work product
	Payload []byte
	// Commitment is the SHA-256 digest of the plaintext
	Commitment []byte
}

// DeliveryView is a delivery as seen by a job participant. Key is only set
// once the freelancer has shared it
type DeliveryView struct {
	Delivery models.Delivery
	Payload  []byte
	Key      []byte
}

// SubmitWork stores the encrypted work product for an accepted job, or a
// replacement for a rejected delivery
func (ls *LedgerState) SubmitWork(
	ctx context.Context,
	caller string,
	jobID uint64,
	submission Submission,
) (*models.Delivery, error) {
	const op = "submitWork"
	var ret *models.Delivery
	err := ls.mutate(
		ctx,
		op,
		[]string{jobKey(jobID)},
		func(tc *txnContext) error {
			job, err := loadJob(op, tc.txn, jobID)
			if err != nil {
				return err
			}
			if job.Freelancer == "" || job.Freelancer != caller {
				return jobError(op, job, ErrNotSelectedFreelancer)
			}
			var prev *models.Delivery
			switch job.Status {
			case models.JobStatusAccepted:
			case models.JobStatusSubmitted:
				prev, err = tc.txn.GetDelivery(job.ID)
				if err != nil {
					return err
				}
				if prev.Status != models.DeliveryStatusRejected {
					return jobError(op, job, ErrInvalidState)
				}
			default:
				return jobError(op, job, ErrInvalidState)
			}
			size := uint64(len(submission.Payload))
			if size == 0 || size > ls.config.MaxPayloadSize ||
				len(submission.Commitment) != sealer.CommitmentSize {
				return jobError(op, job, ErrInvalidDelivery)
			}
			payloadHash := sealer.Commit(submission.Payload)
			key := types.DeliveryBlobKey(job.ID, payloadHash)
			if err := tc.txn.PutPayload(key, submission.Payload); err != nil {
				return fmt.Errorf("store payload: %w", err)
			}
			delivery := &models.Delivery{
				JobID:       job.ID,
				PayloadKey:  key,
				PayloadHash: payloadHash,
				PayloadSize: size,
				Commitment:  submission.Commitment,
				Revision:    1,
				Status:      models.DeliveryStatusPending,
				SubmittedAt: tc.now,
			}
			if prev != nil {
				delivery.Revision = prev.Revision + 1
			}
			if err := tc.txn.PutDelivery(delivery); err != nil {
				return err
			}
			job.Status = models.JobStatusSubmitted
			if err := tc.emit(job, event.WorkSubmittedEventType, caller, event.WorkSubmittedEvent{
				PayloadHash: payloadHash,
				Commitment:  delivery.Commitment,
				PayloadSize: size,
				Revision:    delivery.Revision,
			}); err != nil {
				return err
			}
			if err := tc.saveJob(job); err != nil {
				return err
			}
			ret = delivery
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ShareDecryptionKey releases the key for the pending delivery
func (ls *LedgerState) ShareDecryptionKey(
	ctx context.Context,
	caller string,
	jobID uint64,
	key []byte,
) error {
	const op = "shareDecryptionKey"
	return ls.mutate(
		ctx,
		op,
		[]string{jobKey(jobID)},
		func(tc *txnContext) error {
			job, err := loadJob(op, tc.txn, jobID)
			if err != nil {
				return err
			}
			if job.Freelancer == "" || job.Freelancer != caller {
				return jobError(op, job, ErrNotSelectedFreelancer)
			}
			if job.Status != models.JobStatusSubmitted {
				return jobError(op, job, ErrInvalidState)
			}
			delivery, err := tc.txn.GetDelivery(job.ID)
			if err != nil {
				return err
			}
			if delivery.Status != models.DeliveryStatusPending ||
				delivery.KeyShared {
				return jobError(op, job, ErrInvalidState)
			}
			if len(key) == 0 {
				return jobError(op, job, ErrInvalidDelivery)
			}
			if ls.config.VerifyDeliveryKeys {
				payload, err := tc.txn.GetPayload(delivery.PayloadKey)
				if err != nil {
					return fmt.Errorf("load payload: %w", err)
				}
				if err := sealer.Verify(payload, key, delivery.Commitment); err != nil {
					ls.config.Logger.Debug(
						"delivery key verification failed",
						"component", "ledger",
						"job_id", job.ID,
						"error", err,
					)
					return jobError(op, job, ErrKeyMismatch)
				}
			}
			stored := key
			if ls.config.KeyWrapper != nil {
				stored, err = ls.config.KeyWrapper.Wrap(key)
				if err != nil {
					return fmt.Errorf("wrap key: %w", err)
				}
			}
			sharedAt := tc.now
			delivery.Key = stored
			delivery.KeyShared = true
			delivery.KeySharedAt = &sharedAt
			if err := tc.txn.PutDelivery(delivery); err != nil {
				return err
			}
			if err := tc.emit(job, event.KeySharedEventType, caller, event.KeySharedEvent{
				Verified: ls.config.VerifyDeliveryKeys,
				Revision: delivery.Revision,
			}); err != nil {
				return err
			}
			return tc.saveJob(job)
		},
	)
}

// RejectDelivery marks the pending delivery rejected. The job stays
// Submitted until the freelancer submits a replacement
func (ls *LedgerState) RejectDelivery(
	ctx context.Context,
	caller string,
	jobID uint64,
	reason string,
) error {
	const op = "rejectDelivery"
	return ls.mutate(
		ctx,
		op,
		[]string{jobKey(jobID)},
		func(tc *txnContext) error {
			job, err := loadJob(op, tc.txn, jobID)
			if err != nil {
				return err
			}
			if job.Owner != caller {
				return jobError(op, job, ErrNotOwner)
			}
			if job.Status != models.JobStatusSubmitted {
				return jobError(op, job, ErrInvalidState)
			}
			delivery, err := tc.txn.GetDelivery(job.ID)
			if err != nil {
				return err
			}
			if delivery.Status != models.DeliveryStatusPending {
				return jobError(op, job, ErrInvalidState)
			}
			rejectedAt := tc.now
			delivery.Status = models.DeliveryStatusRejected
			delivery.RejectReason = reason
			delivery.RejectedAt = &rejectedAt
			delivery.Key = nil
			delivery.KeyShared = false
			delivery.KeySharedAt = nil
			if err := tc.txn.PutDelivery(delivery); err != nil {
				return err
			}
			if err := tc.emit(job, event.DeliveryRejectedEventType, caller, event.DeliveryRejectedEvent{
				Reason:   reason,
				Revision: delivery.Revision,
			}); err != nil {
				return err
			}
			return tc.saveJob(job)
		},
	)
}

// CompleteJob releases the escrow once the decryption key has been shared.
// Payment and the transition to Completed commit together
func (ls *LedgerState) CompleteJob(
	ctx context.Context,
	caller string,
	jobID uint64,
) (*models.Job, error) {
	const op = "completeJob"
	var ret *models.Job
	err := ls.mutate(
		ctx,
		op,
		[]string{jobKey(jobID)},
		func(tc *txnContext) error {
			job, err := loadJob(op, tc.txn, jobID)
			if err != nil {
				return err
			}
			if job.Owner != caller {
				return jobError(op, job, ErrNotOwner)
			}
			if job.Status != models.JobStatusSubmitted {
				return jobError(op, job, ErrInvalidState)
			}
			delivery, err := tc.txn.GetDelivery(job.ID)
			if err != nil {
				return err
			}
			if delivery.Status != models.DeliveryStatusPending ||
				!delivery.KeyShared {
				return jobError(op, job, ErrKeyNotShared)
			}
			if err := tc.releaseEscrow(job, caller, false); err != nil {
				return err
			}
			ret = job
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	ls.config.Logger.Info(
		"job completed",
		"component", "ledger",
		"job_id", jobID,
		"freelancer", ret.Freelancer,
	)
	return ret, nil
}

// GetDelivery returns the delivery of a job to one of its participants
func (ls *LedgerState) GetDelivery(
	ctx context.Context,
	caller string,
	jobID uint64,
) (*DeliveryView, error) {
	const op = "getDelivery"
	var ret *DeliveryView
	err := ls.view(ctx, op, func(txn types.StoreTxn) error {
		job, err := loadJob(op, txn, jobID)
		if err != nil {
			return err
		}
		if !job.IsParticipant(caller) {
			return jobError(op, job, ErrNotParticipant)
		}
		delivery, err := txn.GetDelivery(job.ID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return jobError(op, job, ErrInvalidState)
			}
			return err
		}
		payload, err := txn.GetPayload(delivery.PayloadKey)
		if err != nil {
			return fmt.Errorf("load payload: %w", err)
		}
		view := &DeliveryView{
			Delivery: *delivery,
			Payload:  payload,
		}
		view.Delivery.Key = nil
		if delivery.KeyShared {
			view.Key = delivery.Key
			if ls.config.KeyWrapper != nil {
				view.Key, err = ls.config.KeyWrapper.Unwrap(delivery.Key)
				if err != nil {
					return fmt.Errorf("unwrap key: %w", err)
				}
			}
		}
		ret = view
		return nil
	})
	return ret, err
}
