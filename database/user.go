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
package database

import (
	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
)

func (t *Txn) GetUser(address string) (*models.User, error) {
	var ret models.User
	if err := t.tx.Where("address = ?", address).First(&ret).Error; err != nil {
		return nil, notFound(err)
	}
	return &ret, nil
}

func (t *Txn) CreateUser(user *models.User) error {
	if err := t.writable(); err != nil {
		return err
	}
	found, err := t.exists(&models.User{}, "address = ?", user.Address)
	if err != nil {
		return err
	}
	if found {
		return types.ErrAlreadyExists
	}
	return t.tx.Create(user).Error
}

func (t *Txn) UpdateUser(user *models.User) error {
	if err := t.writable(); err != nil {
		return err
	}
	found, err := t.exists(&models.User{}, "address = ?", user.Address)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	return t.tx.Model(user).Select("*").Updates(user).Error
}

func (t *Txn) CountUsers() (uint64, error) {
	var count int64
	if err := t.tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint64(count), nil //nolint:gosec // count is never negative
}
