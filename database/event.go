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

// AppendEvent adds a record to the event log. The store assigns Position
func (t *Txn) AppendEvent(record *models.EventRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	found, err := t.exists(
		&models.EventRecord{},
		"job_id = ? AND sequence = ?",
		record.JobID,
		record.Sequence,
	)
	if err != nil {
		return err
	}
	if found {
		return types.ErrAlreadyExists
	}
	record.Position = 0
	return t.tx.Create(record).Error
}

// ListEvents returns log records after the given position in commit order
func (t *Txn) ListEvents(
	afterPosition uint64,
	limit int,
) ([]models.EventRecord, error) {
	ret := []models.EventRecord{}
	query := t.tx.Where("position > ?", afterPosition).Order("position ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}

func (t *Txn) ListJobEvents(jobID uint64) ([]models.EventRecord, error) {
	ret := []models.EventRecord{}
	err := t.tx.Where("job_id = ?", jobID).Order("sequence ASC").Find(&ret).Error
	if err != nil {
		return nil, err
	}
	return ret, nil
}
