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
)

func TestComputeReputation(t *testing.T) {
	testDefs := []struct {
		name     string
		user     models.User
		expected uint32
	}{
		{name: "no ratings", user: models.User{CompletedJobs: 5}},
		{
			name:     "minimum rating",
			user:     models.User{RatingSum: 300, RatingCount: 3, CompletedJobs: 10},
			expected: 0,
		},
		{
			name:     "perfect at full weight",
			user:     models.User{RatingSum: 5000, RatingCount: 10, CompletedJobs: 10},
			expected: 5000,
		},
		{
			name:     "weight caps at ten jobs",
			user:     models.User{RatingSum: 1000, RatingCount: 2, CompletedJobs: 40},
			expected: 5000,
		},
		{
			name:     "average three over four jobs",
			user:     models.User{RatingSum: 1200, RatingCount: 4, CompletedJobs: 4},
			expected: 1000,
		},
		{
			name:     "single perfect rating",
			user:     models.User{RatingSum: 500, RatingCount: 1, CompletedJobs: 1},
			expected: 500,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(t, testDef.expected, computeReputation(&testDef.user))
		})
	}
}

func TestReputationLevelFor(t *testing.T) {
	testDefs := []struct {
		score    uint32
		expected string
	}{
		{score: 0, expected: "Novice"},
		{score: 499, expected: "Novice"},
		{score: 500, expected: "Intermediate"},
		{score: 1500, expected: "Expert"},
		{score: 2999, expected: "Expert"},
		{score: 5000, expected: "Master"},
	}
	for _, testDef := range testDefs {
		assert.Equal(
			t,
			testDef.expected,
			ReputationLevelFor(DefaultReputationTiers, testDef.score),
		)
	}
	unordered := []ReputationTier{
		{Name: "Gold", Min: 100},
		{Name: "Bronze", Min: 0},
	}
	assert.Equal(t, "Gold", ReputationLevelFor(unordered, 150))
}

func TestValidateReputationTiers(t *testing.T) {
	assert.NoError(t, ValidateReputationTiers(DefaultReputationTiers))
	assert.Error(t, ValidateReputationTiers(nil))
	assert.Error(t, ValidateReputationTiers([]ReputationTier{{Name: "A", Min: 10}}))
	assert.Error(t, ValidateReputationTiers([]ReputationTier{
		{Name: "A", Min: 0},
		{Name: "A", Min: 10},
	}))
	assert.Error(t, ValidateReputationTiers([]ReputationTier{{Min: 0}}))
}
