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

func strPtr(s string) *string {
	return &s
}

func TestUpdateProfile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b testBackend) {
		h := newHarness(t, b)
		_, err := h.ls.UpdateProfile(h.ctx, dave, ProfileUpdate{Name: strPtr("Dave")})
		h.requireKind(err, ErrNotRegistered)

		h.setupUsers(1_000_000)
		// Earn bob a reputation before editing his profile
		job := h.deliveredJob(1_000_000)
		_, err = h.ls.CompleteJob(h.ctx, alice, job.ID)
		require.NoError(t, err)
		_, err = h.ls.SubmitReview(h.ctx, alice, job.ID, ReviewDetails{
			Reviewee: bob,
			Rating:   models.MaxRating,
		})
		require.NoError(t, err)
		before, err := h.ls.GetUser(h.ctx, bob)
		require.NoError(t, err)
		require.NotZero(t, before.Reputation)

		_, err = h.ls.UpdateProfile(h.ctx, bob, ProfileUpdate{Name: strPtr("   ")})
		h.requireKind(err, ErrInvalidProfile)
		unchanged, err := h.ls.GetUser(h.ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, bob, unchanged.Name)

		updated, err := h.ls.UpdateProfile(h.ctx, bob, ProfileUpdate{
			Bio:    strPtr("Go developer"),
			Skills: []string{" go ", "sql", "go", ""},
		})
		require.NoError(t, err)
		assert.Equal(t, "Go developer", updated.Bio)
		assert.Equal(t, []string{"go", "sql"}, updated.Skills)

		updated, err = h.ls.UpdateProfile(h.ctx, bob, ProfileUpdate{
			Name:  strPtr(" Bob Builder "),
			Email: strPtr("bob@example.com"),
		})
		require.NoError(t, err)
		got, err := h.ls.GetUser(h.ctx, bob)
		require.NoError(t, err)
		for _, user := range []*models.User{updated, got} {
			assert.Equal(t, "Bob Builder", user.Name)
			assert.Equal(t, "bob@example.com", user.Email)
			// Fields left out of the update keep their values
			assert.Equal(t, "Go developer", user.Bio)
			assert.Equal(t, []string{"go", "sql"}, user.Skills)
			assert.Equal(t, bob, user.Address)
			assert.Equal(t, models.RoleFreelancer, user.Role)
			assert.Equal(t, before.Reputation, user.Reputation)
			assert.Equal(t, before.RatingCount, user.RatingCount)
			assert.Equal(t, before.CompletedJobs, user.CompletedJobs)
			assert.True(t, before.RegisteredAt.Equal(user.RegisteredAt))
		}

		// Profiles are per caller
		alicesView, err := h.ls.GetUser(h.ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, alice, alicesView.Name)
		assert.Empty(t, alicesView.Bio)
	})
}
