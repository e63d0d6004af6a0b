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

func (t *Txn) CreateApplication(app *models.Application) error {
	if err := t.writable(); err != nil {
		return err
	}
	app.ID = 0
	return t.tx.Create(app).Error
}

func (t *Txn) UpdateApplication(app *models.Application) error {
	if err := t.writable(); err != nil {
		return err
	}
	found, err := t.exists(&models.Application{}, "id = ?", app.ID)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	return t.tx.Model(app).Select("*").Updates(app).Error
}

func (t *Txn) ListApplications(jobID uint64) ([]models.Application, error) {
	ret := []models.Application{}
	err := t.tx.Where("job_id = ?", jobID).Order("id ASC").Find(&ret).Error
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (t *Txn) ListApplicationsByApplicant(
	address string,
) ([]models.Application, error) {
	ret := []models.Application{}
	err := t.tx.Where("applicant = ?", address).Order("id ASC").Find(&ret).Error
	if err != nil {
		return nil, err
	}
	return ret, nil
}
