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
	"time"

	"github.com/blinklabs-io/worksync/database/models"
	"gorm.io/gorm/clause"
)

func (t *Txn) GetBalance(address string) (uint64, error) {
	var accounts []models.Account
	result := t.tx.Where("address = ?", address).Limit(1).Find(&accounts)
	if result.Error != nil {
		return 0, result.Error
	}
	if len(accounts) == 0 {
		return 0, nil
	}
	return accounts[0].Balance, nil
}

func (t *Txn) SetBalance(address string, balance uint64) error {
	if err := t.writable(); err != nil {
		return err
	}
	account := models.Account{
		Address:   address,
		Balance:   balance,
		UpdatedAt: time.Now(),
	}
	return t.tx.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&account).Error
}

func (t *Txn) AddLedgerEntry(entry *models.LedgerEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.tx.Create(entry).Error
}

// ListLedgerEntries returns journal entries touching address, newest first.
// An empty address lists all entries
func (t *Txn) ListLedgerEntries(
	address string,
	limit int,
) ([]models.LedgerEntry, error) {
	ret := []models.LedgerEntry{}
	query := t.tx.Order("id DESC")
	if address != "" {
		query = query.Where(
			"from_address = ? OR to_address = ?",
			address,
			address,
		)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}
