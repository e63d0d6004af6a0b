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

// EventRecord is an entry in the append-only event log. Position is global
// and follows commit order, Sequence is gap-free per job.
type EventRecord struct {
	CreatedAt time.Time
	Type      string `gorm:"index;size:64"`
	Actor     string `gorm:"size:128"`
	Payload   []byte
	Position  uint64 `gorm:"primaryKey;autoIncrement"`
	JobID     uint64 `gorm:"uniqueIndex:idx_event_job_seq"`
	Sequence  uint64 `gorm:"uniqueIndex:idx_event_job_seq"`
}

func (EventRecord) TableName() string {
	return "event"
}
