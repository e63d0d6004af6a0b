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

func (t *Txn) CreateJob(job *models.Job) error {
	if err := t.writable(); err != nil {
		return err
	}
	job.ID = 0
	job.Version = 1
	return t.tx.Create(job).Error
}

func (t *Txn) GetJob(id uint64) (*models.Job, error) {
	var ret models.Job
	if err := t.tx.Where("id = ?", id).First(&ret).Error; err != nil {
		return nil, notFound(err)
	}
	return &ret, nil
}

// UpdateJob writes job only if the stored version still matches
func (t *Txn) UpdateJob(job *models.Job) error {
	if err := t.writable(); err != nil {
		return err
	}
	prevVersion := job.Version
	job.Version = prevVersion + 1
	result := t.tx.Model(job).
		Where("version = ?", prevVersion).
		Select("*").
		Updates(job)
	if result.Error != nil {
		job.Version = prevVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		job.Version = prevVersion
		found, err := t.exists(&models.Job{}, "id = ?", job.ID)
		if err != nil {
			return err
		}
		if !found {
			return types.ErrNotFound
		}
		return types.ErrVersionConflict
	}
	return nil
}

func (t *Txn) ListJobs(filter models.JobFilter) ([]models.Job, error) {
	ret := []models.Job{}
	query := t.tx.Order("id ASC")
	if filter.Owner != "" {
		query = query.Where("owner = ?", filter.Owner)
	}
	if filter.Freelancer != "" {
		query = query.Where("freelancer = ?", filter.Freelancer)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}

func (t *Txn) CountJobs() (uint64, error) {
	var count int64
	if err := t.tx.Model(&models.Job{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint64(count), nil //nolint:gosec // count is never negative
}
