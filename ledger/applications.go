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

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
)

type ApplicationDetails struct {
	Proposal     string
	BidAmount    uint64
	DeliveryDays uint32
}

// ApplyForJob records a pending application from caller
func (ls *LedgerState) ApplyForJob(
	ctx context.Context,
	caller string,
	jobID uint64,
	details ApplicationDetails,
) (*models.Application, error) {
	const op = "applyForJob"
	var ret *models.Application
	err := ls.mutate(
		ctx,
		op,
		[]string{jobKey(jobID)},
		func(tc *txnContext) error {
			applicant, err := loadUser(op, tc.txn, caller)
			if err != nil {
				return err
			}
			if !applicant.Role.CanApply() {
				return newError(op, ErrRoleNotAllowed)
			}
			job, err := loadJob(op, tc.txn, jobID)
			if err != nil {
				return err
			}
			if job.Owner == caller {
				return jobError(op, job, ErrRoleNotAllowed)
			}
			if job.Status != models.JobStatusPosted {
				return jobError(op, job, ErrJobNotOpen)
			}
			proposal := strings.TrimSpace(details.Proposal)
			if proposal == "" {
				return jobError(op, job, ErrInvalidApplication)
			}
			apps, err := tc.txn.ListApplications(job.ID)
			if err != nil {
				return err
			}
			for _, app := range apps {
				if app.Applicant == caller &&
					app.Status != models.ApplicationStatusRejected {
					return jobError(op, job, ErrDuplicateApplication)
				}
			}
			app := &models.Application{
				JobID:        job.ID,
				Applicant:    caller,
				Proposal:     proposal,
				BidAmount:    details.BidAmount,
				DeliveryDays: details.DeliveryDays,
				Status:       models.ApplicationStatusPending,
				CreatedAt:    tc.now,
				UpdatedAt:    tc.now,
			}
			if err := tc.txn.CreateApplication(app); err != nil {
				return err
			}
			if err := tc.emit(job, event.JobAppliedEventType, caller, event.JobAppliedEvent{
				Applicant:     caller,
				ApplicationID: app.ID,
				BidAmount:     app.BidAmount,
			}); err != nil {
				return err
			}
			if err := tc.saveJob(job); err != nil {
				return err
			}
			ret = app
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// SelectFreelancer accepts the pending application of applicant and rejects
// every other pending application for the job
func (ls *LedgerState) SelectFreelancer(
	ctx context.Context,
	caller string,
	jobID uint64,
	applicant string,
) (*models.Job, error) {
	const op = "selectFreelancer"
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
			var selected *models.Application
			for i := range apps {
				if apps[i].Applicant == applicant &&
					apps[i].Status == models.ApplicationStatusPending {
					selected = &apps[i]
					break
				}
			}
			if selected == nil {
				return jobError(op, job, ErrApplicationNotFound)
			}
			var rejected []uint64
			for i := range apps {
				app := &apps[i]
				switch {
				case app == selected:
					app.Status = models.ApplicationStatusAccepted
				case app.Status == models.ApplicationStatusPending:
					app.Status = models.ApplicationStatusRejected
					rejected = append(rejected, app.ID)
				default:
					continue
				}
				app.UpdatedAt = tc.now
				if err := tc.txn.UpdateApplication(app); err != nil {
					return err
				}
			}
			job.Freelancer = applicant
			job.Status = models.JobStatusAccepted
			if err := tc.emit(job, event.FreelancerSelectedEventType, caller, event.FreelancerSelectedEvent{
				Freelancer:    applicant,
				ApplicationID: selected.ID,
				Rejected:      rejected,
			}); err != nil {
				return err
			}
			if err := tc.saveJob(job); err != nil {
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
		"freelancer selected",
		"component", "ledger",
		"job_id", jobID,
		"freelancer", applicant,
	)
	return ret, nil
}

func (ls *LedgerState) ListApplications(
	ctx context.Context,
	jobID uint64,
) ([]models.Application, error) {
	const op = "listApplications"
	var ret []models.Application
	err := ls.view(ctx, op, func(txn types.StoreTxn) error {
		if _, err := loadJob(op, txn, jobID); err != nil {
			return err
		}
		var err error
		ret, err = txn.ListApplications(jobID)
		return err
	})
	return ret, err
}

func (ls *LedgerState) ApplicationsByApplicant(
	ctx context.Context,
	address string,
) ([]models.Application, error) {
	var ret []models.Application
	err := ls.view(ctx, "applicationsByApplicant", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.ListApplicationsByApplicant(address)
		return err
	})
	return ret, err
}
