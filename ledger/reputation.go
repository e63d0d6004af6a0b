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
	"errors"
	"slices"

	"github.com/blinklabs-io/worksync/database/models"
)

const (
	MaxReputation = 5000
	// reputationFullWeightJobs is the completed job count at which the
	// rating average counts in full
	reputationFullWeightJobs = 10
)

// ReputationTier names the band of scores starting at Min
type ReputationTier struct {
	Name string `yaml:"name"`
	Min  uint32 `yaml:"min"`
}

var DefaultReputationTiers = []ReputationTier{
	{Name: "Novice", Min: 0},
	{Name: "Intermediate", Min: 500},
	{Name: "Expert", Min: 1500},
	{Name: "Master", Min: 3000},
}

// ValidateReputationTiers checks that tiers start at zero and have unique
// names and thresholds
func ValidateReputationTiers(tiers []ReputationTier) error {
	if len(tiers) == 0 {
		return errors.New("at least one reputation tier is required")
	}
	seenMin := make(map[uint32]bool)
	seenName := make(map[string]bool)
	hasZero := false
	for _, tier := range tiers {
		if tier.Name == "" {
			return errors.New("reputation tier name must not be empty")
		}
		if seenMin[tier.Min] || seenName[tier.Name] {
			return errors.New("duplicate reputation tier")
		}
		seenMin[tier.Min] = true
		seenName[tier.Name] = true
		if tier.Min == 0 {
			hasZero = true
		}
	}
	if !hasZero {
		return errors.New("reputation tiers must include a tier starting at 0")
	}
	return nil
}

// ReputationLevelFor returns the name of the highest tier whose threshold
// does not exceed score
func ReputationLevelFor(tiers []ReputationTier, score uint32) string {
	sorted := slices.Clone(tiers)
	slices.SortFunc(sorted, func(a, b ReputationTier) int {
		return int(a.Min) - int(b.Min)
	})
	ret := ""
	for _, tier := range sorted {
		if score >= tier.Min {
			ret = tier.Name
		}
	}
	return ret
}

// computeReputation maps the average rating onto 0-5000 and scales it by
// the user's completed job count, reaching full weight at ten jobs
func computeReputation(user *models.User) uint32 {
	if user.RatingCount == 0 {
		return 0
	}
	floor := models.MinRating * user.RatingCount
	if user.RatingSum <= floor {
		return 0
	}
	ratingRange := uint64(models.MaxRating - models.MinRating)
	base := (user.RatingSum - floor) * MaxReputation / (ratingRange * user.RatingCount)
	weight := min(user.CompletedJobs, reputationFullWeightJobs)
	score := base * weight / reputationFullWeightJobs
	return uint32(min(score, MaxReputation)) //nolint:gosec // clamped above
}
