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
	"strings"
	"time"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
)

type JobDetails struct {
	Deadline    time.Time
	Title       string
	Description string
	Skills      []string
	Budget      uint64
	Category    models.Category
}

func (d JobDetails) validate(now time.Time) bool {
	return strings.TrimSpace(d.Title) != "" &&
		d.Category.Valid() &&
		d.Budget > 0 &&
		d.Deadline.After(now)
}

// PostJob creates a job and moves its budget from the caller's balance into
// escrow
func (ls *LedgerState) PostJob(
	ctx context.Context,
	caller string,
	details JobDetails,
) (*models.Job, error) {
	const op = "postJob"
	var ret *models.Job
	err := ls.mutate(
		ctx,
		op,
		[]string{userKey(caller)},
		func(tc *txnContext) error {
			owner, err := loadUser(op, tc.txn, caller)
			if err != nil {
				return err
			}
			if !owner.Role.CanPost() {
				return newError(op, ErrRoleNotAllowed)
			}
			if !details.validate(tc.now) {
				return newError(op, ErrInvalidJob)
			}
			if err := tc.debit(caller, details.Budget); err != nil {
				return err
			}
			job := &models.Job{
				Title:       strings.TrimSpace(details.Title),
				Description: details.Description,
				Category:    details.Category,
				Skills:      cleanSkills(details.Skills),
				Budget:      details.Budget,
				Escrow:      details.Budget,
				Deadline:    details.Deadline.UTC(),
				Status:      models.JobStatusPosted,
				Owner:       caller,
				CreatedAt:   tc.now,
				UpdatedAt:   tc.now,
			}
			if err := tc.txn.CreateJob(job); err != nil {
				return err
			}
			if err := tc.journal(
				models.EntryKindEscrowHold,
				job.ID,
				caller,
				"",
				job.Budget,
			); err != nil {
				return err
			}
			if err := tc.emit(job, event.JobPostedEventType, caller, event.JobPostedEvent{
				Owner:    caller,
				Title:    job.Title,
				Budget:   job.Budget,
				Category: job.Category,
			}); err != nil {
				return err
			}
			if err := tc.saveJob(job); err != nil {
				return err
			}
			tc.escrowDelta += int64(job.Budget) //nolint:gosec // escrow fits in the gauge
			ret = job
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	ls.config.Logger.Info(
		"job posted",
		"component", "ledger",
		"job_id", ret.ID,
		"owner", caller,
		"budget", ret.Budget,
	)
	return ret, nil
}

// CancelJob refunds the escrow of a job that has no selected freelancer
func (ls *LedgerState) CancelJob(
	ctx context.Context,
	caller string,
	jobID uint64,
) (*models.Job, error) {
	const op = "cancelJob"
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
			if job.Status != models.JobStatusPosted {
				return jobError(op, job, ErrInvalidState)
			}
			apps, err := tc.txn.ListApplications(job.ID)
			if err != nil {
				return err
			}
			for i := range apps {
				app := &apps[i]
				if app.Status != models.ApplicationStatusPending {
					continue
				}
				app.Status = models.ApplicationStatusRejected
				app.UpdatedAt = tc.now
				if err := tc.txn.UpdateApplication(app); err != nil {
					return err
				}
			}
			if err := tc.refundEscrow(job, false); err != nil {
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
		"job cancelled",
		"component", "ledger",
		"job_id", jobID,
	)
	return ret, nil
}

// refundEscrow returns the full escrow to the owner and cancels the job
func (tc *txnContext) refundEscrow(job *models.Job, byResolution bool) error {
	refund := job.Escrow
	if err := tc.credit(job.Owner, refund); err != nil {
		return err
	}
	if err := tc.journal(models.EntryKindRefund, job.ID, "", job.Owner, refund); err != nil {
		return err
	}
	job.Escrow = 0
	job.Status = models.JobStatusCancelled
	cancelledAt := tc.now
	job.CancelledAt = &cancelledAt
	if err := tc.emit(job, event.JobCancelledEventType, job.Owner, event.JobCancelledEvent{
		Owner:        job.Owner,
		Refund:       refund,
		ByResolution: byResolution,
	}); err != nil {
		return err
	}
	if err := tc.saveJob(job); err != nil {
		return err
	}
	tc.escrowDelta -= int64(refund) //nolint:gosec // escrow fits in the gauge
	tc.refund += refund
	return nil
}

// releaseEscrow pays the freelancer the escrow minus the platform fee, pays
// the fee to the treasury and completes the job
func (tc *txnContext) releaseEscrow(
	job *models.Job,
	actor string,
	byResolution bool,
) error {
	amount := job.Escrow
	fee := PlatformFee(amount, tc.ls.config.FeeBps)
	payout := amount - fee
	treasury := tc.ls.config.Treasury
	if err := tc.credit(job.Freelancer, payout); err != nil {
		return err
	}
	if err := tc.journal(models.EntryKindEscrowRelease, job.ID, "", job.Freelancer, payout); err != nil {
		return err
	}
	if fee > 0 {
		if err := tc.credit(treasury, fee); err != nil {
			return err
		}
		if err := tc.journal(models.EntryKindPlatformFee, job.ID, "", treasury, fee); err != nil {
			return err
		}
	}
	job.Escrow = 0
	job.Status = models.JobStatusCompleted
	completedAt := tc.now
	job.CompletedAt = &completedAt
	for _, address := range []string{job.Owner, job.Freelancer} {
		user, err := tc.txn.GetUser(address)
		if err != nil {
			return err
		}
		user.CompletedJobs++
		user.UpdatedAt = tc.now
		if err := tc.txn.UpdateUser(user); err != nil {
			return err
		}
	}
	if err := tc.emit(job, event.PaymentReleasedEventType, actor, event.PaymentReleasedEvent{
		Freelancer: job.Freelancer,
		Treasury:   treasury,
		Amount:     payout,
		Fee:        fee,
	}); err != nil {
		return err
	}
	if err := tc.emit(job, event.JobCompletedEventType, actor, event.JobCompletedEvent{
		Freelancer:   job.Freelancer,
		ByResolution: byResolution,
	}); err != nil {
		return err
	}
	if err := tc.saveJob(job); err != nil {
		return err
	}
	tc.escrowDelta -= int64(amount) //nolint:gosec // escrow fits in the gauge
	tc.payout += payout
	tc.fee += fee
	return nil
}

func (ls *LedgerState) GetJob(
	ctx context.Context,
	jobID uint64,
) (*models.Job, error) {
	const op = "getJob"
	var ret *models.Job
	err := ls.view(ctx, op, func(txn types.StoreTxn) error {
		job, err := loadJob(op, txn, jobID)
		if err != nil {
			return err
		}
		ret = job
		return nil
	})
	return ret, err
}

func (ls *LedgerState) ListJobs(
	ctx context.Context,
	filter models.JobFilter,
) ([]models.Job, error) {
	var ret []models.Job
	err := ls.view(ctx, "listJobs", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.ListJobs(filter)
		return err
	})
	return ret, err
}

func (ls *LedgerState) JobsByOwner(
	ctx context.Context,
	owner string,
) ([]models.Job, error) {
	return ls.ListJobs(ctx, models.JobFilter{Owner: owner})
}

func (ls *LedgerState) JobsByFreelancer(
	ctx context.Context,
	freelancer string,
) ([]models.Job, error) {
	return ls.ListJobs(ctx, models.JobFilter{Freelancer: freelancer})
}

func (ls *LedgerState) JobsByCategory(
	ctx context.Context,
	category models.Category,
) ([]models.Job, error) {
	return ls.ListJobs(ctx, models.JobFilter{Category: &category})
}

func (ls *LedgerState) JobsByStatus(
	ctx context.Context,
	status models.JobStatus,
) ([]models.Job, error) {
	return ls.ListJobs(ctx, models.JobFilter{Status: &status})
}

func (ls *LedgerState) TotalJobs(ctx context.Context) (uint64, error) {
	var ret uint64
	err := ls.view(ctx, "totalJobs", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.CountJobs()
		return err
	})
	return ret, err
}
