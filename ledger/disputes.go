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

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
)

type Resolution struct {
	Note    string
	Outcome models.DisputeOutcome
}

// RaiseDispute moves an accepted or submitted job to Disputed. The escrow
// stays held until the operator resolves the dispute
func (ls *LedgerState) RaiseDispute(
	ctx context.Context,
	caller string,
	jobID uint64,
	reason string,
) (*models.Dispute, error) {
	const op = "raiseDispute"
	var ret *models.Dispute
	err := ls.mutate(
		ctx,
		op,
		[]string{jobKey(jobID)},
		func(tc *txnContext) error {
			job, err := loadJob(op, tc.txn, jobID)
			if err != nil {
				return err
			}
			if !job.IsParticipant(caller) {
				return jobError(op, job, ErrNotParticipant)
			}
			if job.Status != models.JobStatusAccepted &&
				job.Status != models.JobStatusSubmitted {
				return jobError(op, job, ErrInvalidState)
			}
			dispute := &models.Dispute{
				JobID:       job.ID,
				RaisedBy:    caller,
				Reason:      reason,
				PriorStatus: job.Status,
				CreatedAt:   tc.now,
			}
			if err := tc.txn.PutDispute(dispute); err != nil {
				return err
			}
			job.Status = models.JobStatusDisputed
			if err := tc.emit(job, event.JobDisputedEventType, caller, event.JobDisputedEvent{
				RaisedBy:    caller,
				Reason:      reason,
				PriorStatus: dispute.PriorStatus,
			}); err != nil {
				return err
			}
			if err := tc.saveJob(job); err != nil {
				return err
			}
			ret = dispute
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	ls.config.Logger.Warn(
		"job disputed",
		"component", "ledger",
		"job_id", jobID,
		"raised_by", caller,
	)
	return ret, nil
}

// ResolveDispute applies the operator's decision: Release pays the
// freelancer as a normal completion would and Refund returns the escrow to
// the owner
func (ls *LedgerState) ResolveDispute(
	ctx context.Context,
	caller string,
	jobID uint64,
	resolution Resolution,
) (*models.Job, error) {
	const op = "resolveDispute"
	if !ls.IsOperator(caller) {
		return nil, &Error{Op: op, Err: ErrNotOperator, JobID: jobID}
	}
	if resolution.Outcome != models.DisputeOutcomeRelease &&
		resolution.Outcome != models.DisputeOutcomeRefund {
		return nil, &Error{Op: op, Err: ErrInvalidResolution, JobID: jobID}
	}
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
			if job.Status != models.JobStatusDisputed {
				return jobError(op, job, ErrInvalidState)
			}
			dispute, err := tc.txn.GetDispute(job.ID)
			if err != nil {
				return err
			}
			if resolution.Outcome == models.DisputeOutcomeRelease {
				err = tc.releaseEscrow(job, caller, true)
			} else {
				err = tc.refundEscrow(job, true)
			}
			if err != nil {
				return err
			}
			resolvedAt := tc.now
			dispute.Outcome = resolution.Outcome
			dispute.Note = resolution.Note
			dispute.ResolvedBy = caller
			dispute.ResolvedAt = &resolvedAt
			if err := tc.txn.PutDispute(dispute); err != nil {
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
		"dispute resolved",
		"component", "ledger",
		"job_id", jobID,
		"outcome", resolution.Outcome.String(),
	)
	return ret, nil
}

func (ls *LedgerState) GetDispute(
	ctx context.Context,
	jobID uint64,
) (*models.Dispute, error) {
	const op = "getDispute"
	var ret *models.Dispute
	err := ls.view(ctx, op, func(txn types.StoreTxn) error {
		job, err := loadJob(op, txn, jobID)
		if err != nil {
			return err
		}
		dispute, err := txn.GetDispute(jobID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return jobError(op, job, ErrInvalidState)
			}
			return err
		}
		ret = dispute
		return nil
	})
	return ret, err
}
