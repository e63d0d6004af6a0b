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

package models

import "time"

// Rating bounds, in hundredths of a star
const (
	MinRating = 100
	MaxRating = 500
)

type Review struct {
	CreatedAt time.Time `                                                json:"createdAt"`
	Reviewer  string    `gorm:"uniqueIndex:idx_review_job_reviewer;size:128" json:"reviewer"`
	Reviewee  string    `gorm:"index;size:128"                           json:"reviewee"`
	Comment   string    `                                                json:"comment,omitempty"`
	ID        uint64    `gorm:"primaryKey;autoIncrement"                 json:"id"`
	JobID     uint64    `gorm:"uniqueIndex:idx_review_job_reviewer"      json:"jobId"`
	Rating    uint16    `                                                json:"rating"`
}

func (Review) TableName() string {
	return "review"
}
