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
	"testing"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b)
		h.setupUsers(1_000_000)
		job := h.deliveredJob(1_000_000)
		_, err := h.ls.SubmitReview(h.ctx, alice, job.ID, ReviewDetails{Reviewee: bob, Rating: 500})
		h.requireKind(err, ErrJobNotCompleted)
		_, err = h.ls.CompleteJob(h.ctx, alice, job.ID)
		require.NoError(t, err)

		testDefs := []struct {
			caller  string
			details ReviewDetails
			err     error
		}{
			{caller: alice, details: ReviewDetails{Reviewee: bob, Rating: 99}, err: ErrInvalidRating},
			{caller: alice, details: ReviewDetails{Reviewee: bob, Rating: 501}, err: ErrInvalidRating},
			{caller: carol, details: ReviewDetails{Reviewee: bob, Rating: 300}, err: ErrNotParticipant},
			{caller: alice, details: ReviewDetails{Reviewee: alice, Rating: 300}, err: ErrNotParticipant},
			{caller: alice, details: ReviewDetails{Reviewee: carol, Rating: 300}, err: ErrNotParticipant},
		}
		for _, testDef := range testDefs {
			_, err := h.ls.SubmitReview(h.ctx, testDef.caller, job.ID, testDef.details)
			h.requireKind(err, testDef.err)
		}

		review, err := h.ls.SubmitReview(h.ctx, alice, job.ID, ReviewDetails{
			Reviewee: bob,
			Rating:   500,
			Comment:  "Great work",
		})
		require.NoError(t, err)
		assert.Equal(t, testNow, review.CreatedAt.UTC())
		_, err = h.ls.SubmitReview(h.ctx, alice, job.ID, ReviewDetails{Reviewee: bob, Rating: 100})
		h.requireKind(err, ErrDuplicateReview)
		_, err = h.ls.SubmitReview(h.ctx, bob, job.ID, ReviewDetails{Reviewee: alice, Rating: 100})
		require.NoError(t, err)

		// One perfect rating over one completed job is a tenth of the maximum
		score, level, err := h.ls.Reputation(h.ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, uint32(500), score)
		assert.Equal(t, "Intermediate", level)
		score, level, err = h.ls.Reputation(h.ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), score)
		assert.Equal(t, "Novice", level)

		reviews, err := h.ls.ListReviews(h.ctx, job.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
		received, err := h.ls.ReviewsFor(h.ctx, bob)
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, uint16(500), received[0].Rating)
		user, err := h.ls.GetUser(h.ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), user.RatingCount)
		assert.Equal(t, uint64(1), user.CompletedJobs)
		assert.Equal(t, models.JobStatusCompleted, h.job(job.ID).Status)
	})
}
