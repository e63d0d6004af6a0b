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

type ReviewDetails struct {
	Reviewee string
	Comment  string
	Rating   uint16
}

// SubmitReview records a review between the participants of a completed
// job and recomputes the reviewee's reputation
func (ls *LedgerState) SubmitReview(
	ctx context.Context,
	caller string,
	jobID uint64,
	details ReviewDetails,
) (*models.Review, error) {
	const op = "submitReview"
	if details.Rating < models.MinRating || details.Rating > models.MaxRating {
		return nil, &Error{Op: op, Err: ErrInvalidRating, JobID: jobID}
	}
	var ret *models.Review
	err := ls.mutate(
		ctx,
		op,
		[]string{jobKey(jobID), userKey(details.Reviewee)},
		func(tc *txnContext) error {
			job, err := loadJob(op, tc.txn, jobID)
			if err != nil {
				return err
			}
			if job.Status != models.JobStatusCompleted {
				return jobError(op, job, ErrJobNotCompleted)
			}
			if !job.IsParticipant(caller) ||
				!job.IsParticipant(details.Reviewee) ||
				caller == details.Reviewee {
				return jobError(op, job, ErrNotParticipant)
			}
			review := &models.Review{
				JobID:     job.ID,
				Reviewer:  caller,
				Reviewee:  details.Reviewee,
				Rating:    details.Rating,
				Comment:   details.Comment,
				CreatedAt: tc.now,
			}
			if err := tc.txn.CreateReview(review); err != nil {
				if errors.Is(err, types.ErrAlreadyExists) {
					return jobError(op, job, ErrDuplicateReview)
				}
				return err
			}
			reviewee, err := tc.txn.GetUser(details.Reviewee)
			if err != nil {
				return err
			}
			reviewee.RatingSum += uint64(details.Rating)
			reviewee.RatingCount++
			reviewee.Reputation = computeReputation(reviewee)
			reviewee.UpdatedAt = tc.now
			if err := tc.txn.UpdateUser(reviewee); err != nil {
				return err
			}
			if err := tc.emit(job, event.ReviewSubmittedEventType, caller, event.ReviewSubmittedEvent{
				Reviewer:   caller,
				Reviewee:   reviewee.Address,
				Rating:     details.Rating,
				Reputation: reviewee.Reputation,
			}); err != nil {
				return err
			}
			if err := tc.saveJob(job); err != nil {
				return err
			}
			ret = review
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (ls *LedgerState) ListReviews(
	ctx context.Context,
	jobID uint64,
) ([]models.Review, error) {
	var ret []models.Review
	err := ls.view(ctx, "listReviews", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.ListReviewsByJob(jobID)
		return err
	})
	return ret, err
}

// ReviewsFor returns the reviews received by address
func (ls *LedgerState) ReviewsFor(
	ctx context.Context,
	address string,
) ([]models.Review, error) {
	var ret []models.Review
	err := ls.view(ctx, "reviewsFor", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.ListReviewsByReviewee(address)
		return err
	})
	return ret, err
}
