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
	"gorm.io/gorm/clause"
)

func (t *Txn) GetDelivery(jobID uint64) (*models.Delivery, error) {
	var ret models.Delivery
	if err := t.tx.Where("job_id = ?", jobID).First(&ret).Error; err != nil {
		return nil, notFound(err)
	}
	return &ret, nil
}

// PutDelivery inserts or replaces the delivery for a job
func (t *Txn) PutDelivery(delivery *models.Delivery) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.tx.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(delivery).Error
}

func (t *Txn) GetDispute(jobID uint64) (*models.Dispute, error) {
	var ret models.Dispute
	if err := t.tx.Where("job_id = ?", jobID).First(&ret).Error; err != nil {
		return nil, notFound(err)
	}
	return &ret, nil
}

// PutDispute inserts or replaces the dispute for a job
func (t *Txn) PutDispute(dispute *models.Dispute) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.tx.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(dispute).Error
}
