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
package devnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/ledger"
)

// ErrAlreadySeeded is returned when a scenario user is already registered
var ErrAlreadySeeded = errors.New("ledger already holds scenario data")

// Result holds the records created by Seed
type Result struct {
	Users []*models.User
	Jobs  []*models.Job
}

// SeedConfig controls how a scenario is applied
type SeedConfig struct {
	Logger *slog.Logger
	// Now is the reference time for job deadlines
	Now      time.Time
	Decimals int32
}

// Seed registers and funds the scenario users, then posts its jobs
func Seed(
	ctx context.Context,
	ls *ledger.LedgerState,
	scenario *Scenario,
	cfg SeedConfig,
) (*Result, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Decimals == 0 {
		cfg.Decimals = ledger.DefaultDecimals
	}
	logger := cfg.Logger.With("component", "devnet")
	ret := &Result{}
	for _, seedUser := range scenario.Users {
		user, err := ls.Register(ctx, seedUser.Address, ledger.Profile{
			Name:   seedUser.Name,
			Email:  seedUser.Email,
			Bio:    seedUser.Bio,
			Avatar: seedUser.Avatar,
			Skills: seedUser.Skills,
			Role:   seedUser.Role,
		})
		if err != nil {
			if errors.Is(err, ledger.ErrAlreadyRegistered) {
				return nil, fmt.Errorf("%w: %s", ErrAlreadySeeded, seedUser.Address)
			}
			return nil, fmt.Errorf("register %s: %w", seedUser.Address, err)
		}
		ret.Users = append(ret.Users, user)
		if seedUser.Funds == "" {
			continue
		}
		funds, err := ledger.ParseAmount(seedUser.Funds, cfg.Decimals)
		if err != nil {
			return nil, fmt.Errorf("funds for %s: %w", seedUser.Address, err)
		}
		if _, err := ls.Deposit(ctx, seedUser.Address, funds); err != nil {
			return nil, fmt.Errorf("fund %s: %w", seedUser.Address, err)
		}
		logger.Debug(
			"registered demo user",
			"address", seedUser.Address,
			"funds", seedUser.Funds,
		)
	}
	for _, seedJob := range scenario.Jobs {
		budget, err := ledger.ParseAmount(seedJob.Budget, cfg.Decimals)
		if err != nil {
			return nil, fmt.Errorf("budget for %q: %w", seedJob.Title, err)
		}
		job, err := ls.PostJob(ctx, seedJob.Owner, ledger.JobDetails{
			Title:       seedJob.Title,
			Description: seedJob.Description,
			Skills:      seedJob.Skills,
			Category:    seedJob.Category,
			Budget:      budget,
			Deadline: cfg.Now.Add(
				time.Duration(seedJob.DeadlineDays) * 24 * time.Hour,
			),
		})
		if err != nil {
			return nil, fmt.Errorf("post %q: %w", seedJob.Title, err)
		}
		ret.Jobs = append(ret.Jobs, job)
	}
	logger.Info(
		fmt.Sprintf(
			"seeded %d users and %d jobs",
			len(ret.Users),
			len(ret.Jobs),
		),
	)
	return ret, nil
}
