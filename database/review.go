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

func (t *Txn) CreateReview(review *models.Review) error {
	if err := t.writable(); err != nil {
		return err
	}
	found, err := t.exists(
		&models.Review{},
		"job_id = ? AND reviewer = ?",
		review.JobID,
		review.Reviewer,
	)
	if err != nil {
		return err
	}
	if found {
		return types.ErrAlreadyExists
	}
	review.ID = 0
	return t.tx.Create(review).Error
}

func (t *Txn) GetReview(
	jobID uint64,
	reviewer string,
) (*models.Review, error) {
	var ret models.Review
	err := t.tx.Where("job_id = ? AND reviewer = ?", jobID, reviewer).
		First(&ret).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ret, nil
}

func (t *Txn) ListReviewsByJob(jobID uint64) ([]models.Review, error) {
	ret := []models.Review{}
	err := t.tx.Where("job_id = ?", jobID).Order("id ASC").Find(&ret).Error
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (t *Txn) ListReviewsByReviewee(address string) ([]models.Review, error) {
	ret := []models.Review{}
	err := t.tx.Where("reviewee = ?", address).Order("id ASC").Find(&ret).Error
	if err != nil {
		return nil, err
	}
	return ret, nil
}
