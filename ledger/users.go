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
	"slices"
	"strings"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
)

type Profile struct {
	Name   string
	Email  string
	Bio    string
	Avatar string
	Skills []string
	Role   models.Role
}

// ProfileUpdate changes the non-nil fields of a profile
type ProfileUpdate struct {
	Name   *string
	Email  *string
	Bio    *string
	Avatar *string
	Skills []string
}

func cleanSkills(skills []string) []string {
	ret := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill != "" && !slices.Contains(ret, skill) {
			ret = append(ret, skill)
		}
	}
	return ret
}

// Register creates the user record for caller
func (ls *LedgerState) Register(
	ctx context.Context,
	caller string,
	profile Profile,
) (*models.User, error) {
	const op = "register"
	name := strings.TrimSpace(profile.Name)
	if caller == "" || name == "" || !profile.Role.Valid() {
		return nil, newError(op, ErrInvalidProfile)
	}
	var ret *models.User
	err := ls.mutate(
		ctx,
		op,
		[]string{userKey(caller)},
		func(tc *txnContext) error {
			_, err := tc.txn.GetUser(caller)
			if err == nil {
				return newError(op, ErrAlreadyRegistered)
			}
			if !errors.Is(err, types.ErrNotFound) {
				return err
			}
			user := &models.User{
				Address:      caller,
				Name:         name,
				Email:        strings.TrimSpace(profile.Email),
				Bio:          profile.Bio,
				Avatar:       profile.Avatar,
				Skills:       cleanSkills(profile.Skills),
				Role:         profile.Role,
				RegisteredAt: tc.now,
				UpdatedAt:    tc.now,
			}
			if err := tc.txn.CreateUser(user); err != nil {
				if errors.Is(err, types.ErrAlreadyExists) {
					return newError(op, ErrAlreadyRegistered)
				}
				return err
			}
			tc.notify(
				event.UserRegisteredEventType,
				event.UserEvent{Address: caller, Role: user.Role},
			)
			ret = user
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	ls.config.Logger.Info(
		"user registered",
		"component", "ledger",
		"address", caller,
		"role", ret.Role.String(),
	)
	return ret, nil
}

// UpdateProfile changes the caller's own profile. Address, role and
// reputation cannot be changed here
func (ls *LedgerState) UpdateProfile(
	ctx context.Context,
	caller string,
	update ProfileUpdate,
) (*models.User, error) {
	const op = "updateProfile"
	var ret *models.User
	err := ls.mutate(
		ctx,
		op,
		[]string{userKey(caller)},
		func(tc *txnContext) error {
			user, err := loadUser(op, tc.txn, caller)
			if err != nil {
				return err
			}
			if update.Name != nil {
				name := strings.TrimSpace(*update.Name)
				if name == "" {
					return newError(op, ErrInvalidProfile)
				}
				user.Name = name
			}
			if update.Email != nil {
				user.Email = strings.TrimSpace(*update.Email)
			}
			if update.Bio != nil {
				user.Bio = *update.Bio
			}
			if update.Avatar != nil {
				user.Avatar = *update.Avatar
			}
			if update.Skills != nil {
				user.Skills = cleanSkills(update.Skills)
			}
			user.UpdatedAt = tc.now
			if err := tc.txn.UpdateUser(user); err != nil {
				return err
			}
			tc.notify(
				event.ProfileUpdatedEventType,
				event.UserEvent{Address: caller, Role: user.Role},
			)
			ret = user
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (ls *LedgerState) GetUser(
	ctx context.Context,
	address string,
) (*models.User, error) {
	const op = "getUser"
	var ret *models.User
	err := ls.view(ctx, op, func(txn types.StoreTxn) error {
		user, err := loadUser(op, txn, address)
		if err != nil {
			return err
		}
		ret = user
		return nil
	})
	return ret, err
}

// ReputationLevel maps a score to the configured tier name
func (ls *LedgerState) ReputationLevel(score uint32) string {
	return ReputationLevelFor(ls.config.ReputationTiers, score)
}

// Reputation returns the score and tier name of a registered user
func (ls *LedgerState) Reputation(
	ctx context.Context,
	address string,
) (uint32, string, error) {
	user, err := ls.GetUser(ctx, address)
	if err != nil {
		return 0, "", err
	}
	return user.Reputation, ls.ReputationLevel(user.Reputation), nil
}

func (ls *LedgerState) TotalUsers(ctx context.Context) (uint64, error) {
	var ret uint64
	err := ls.view(ctx, "totalUsers", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.CountUsers()
		return err
	})
	return ret, err
}
