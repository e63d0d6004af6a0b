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

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
)

type Stats struct {
	JobsByStatus    map[string]uint64 `json:"jobsByStatus"`
	Treasury        string            `json:"treasury"`
	TotalUsers      uint64            `json:"totalUsers"`
	TotalJobs       uint64            `json:"totalJobs"`
	EscrowHeld      uint64            `json:"escrowHeld"`
	FeeBps          uint64            `json:"feeBps"`
	TreasuryBalance uint64            `json:"treasuryBalance"`
}

// Stats summarizes the marketplace from a single consistent snapshot
func (ls *LedgerState) Stats(ctx context.Context) (*Stats, error) {
	ret := &Stats{
		JobsByStatus: make(map[string]uint64),
		Treasury:     ls.config.Treasury,
		FeeBps:       ls.config.FeeBps,
	}
	err := ls.view(ctx, "stats", func(txn types.StoreTxn) error {
		var err error
		if ret.TotalUsers, err = txn.CountUsers(); err != nil {
			return err
		}
		if ret.TotalJobs, err = txn.CountJobs(); err != nil {
			return err
		}
		for _, status := range models.JobStatuses() {
			jobs, err := txn.ListJobs(models.JobFilter{Status: &status})
			if err != nil {
				return err
			}
			ret.JobsByStatus[status.String()] = uint64(len(jobs))
			for _, job := range jobs {
				ret.EscrowHeld += job.Escrow
			}
		}
		ret.TreasuryBalance, err = txn.GetBalance(ls.config.Treasury)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
