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

import (
	"fmt"
	"time"
)

type JobStatus uint8

const (
	JobStatusPosted    JobStatus = 0
	JobStatusAccepted  JobStatus = 1
	JobStatusSubmitted JobStatus = 2
	JobStatusCompleted JobStatus = 3
	JobStatusCancelled JobStatus = 4
	JobStatusDisputed  JobStatus = 5
)

var jobStatusNames = map[JobStatus]string{
	JobStatusPosted:    "Posted",
	JobStatusAccepted:  "Accepted",
	JobStatusSubmitted: "Submitted",
	JobStatusCompleted: "Completed",
	JobStatusCancelled: "Cancelled",
	JobStatusDisputed:  "Disputed",
}

// JobStatuses returns all job statuses in numeric order
func JobStatuses() []JobStatus {
	return []JobStatus{
		JobStatusPosted,
		JobStatusAccepted,
		JobStatusSubmitted,
		JobStatusCompleted,
		JobStatusCancelled,
		JobStatusDisputed,
	}
}

func (s JobStatus) Valid() bool {
	_, ok := jobStatusNames[s]
	return ok
}

// Terminal returns true for statuses that permit no further transitions
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

func (s JobStatus) String() string {
	if name, ok := jobStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("JobStatus(%d)", uint8(s))
}

func (s JobStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *JobStatus) UnmarshalText(data []byte) error {
	tmp, err := parseEnum(string(data), jobStatusNames)
	if err != nil {
		return fmt.Errorf("invalid job status %q", string(data))
	}
	*s = tmp
	return nil
}

// ParseJobStatus parses a status name or number
func ParseJobStatus(s string) (JobStatus, error) {
	var ret JobStatus
	err := ret.UnmarshalText([]byte(s))
	return ret, err
}

type Category uint8

var categoryNames = map[Category]string{
	0:  "Web Development",
	1:  "Mobile Development",
	2:  "UI/UX Design",
	3:  "Content Writing",
	4:  "Digital Marketing",
	5:  "Data Science",
	6:  "Blockchain Development",
	7:  "Graphic Design",
	8:  "Video Editing",
	9:  "Translation",
	10: "Photography",
	11: "Music & Audio",
	12: "Animation",
	13: "Game Development",
	14: "DevOps & Cloud",
	15: "AI & Machine Learning",
}

// CategoryCount is the number of defined job categories
const CategoryCount = 16

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(data []byte) error {
	tmp, err := parseEnum(string(data), categoryNames)
	if err != nil {
		return fmt.Errorf("invalid category %q", string(data))
	}
	*c = tmp
	return nil
}

// ParseCategory parses a category name or number
func ParseCategory(s string) (Category, error) {
	var ret Category
	err := ret.UnmarshalText([]byte(s))
	return ret, err
}

type Job struct {
	Deadline    time.Time  `                                json:"deadline"`
	CreatedAt   time.Time  `                                json:"createdAt"`
	UpdatedAt   time.Time  `                                json:"updatedAt"`
	CompletedAt *time.Time `                                json:"completedAt,omitempty"`
	CancelledAt *time.Time `                                json:"cancelledAt,omitempty"`
	Title       string     `gorm:"size:256"                 json:"title"`
	Description string     `                                json:"description"`
	Owner       string     `gorm:"index;size:128"           json:"owner"`
	Freelancer  string     `gorm:"index;size:128"           json:"freelancer,omitempty"`
	Skills      []string   `gorm:"serializer:json;type:text"          json:"skills"`
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Budget      uint64     `                                json:"budget"`
	Escrow      uint64     `                                json:"escrow"`
	EventSeq    uint64     `                                json:"eventSeq"`
	Version     uint64     `                                json:"version"`
	Category    Category   `gorm:"index"                    json:"category"`
	Status      JobStatus  `gorm:"index"                    json:"status"`
}

func (Job) TableName() string {
	return "job"
}

// IsParticipant returns true if the address is the job owner or the selected freelancer
func (j *Job) IsParticipant(address string) bool {
	if address == "" {
		return false
	}
	return address == j.Owner || address == j.Freelancer
}

// JobFilter restricts job listings. Zero values are ignored.
type JobFilter struct {
	Category   *Category
	Status     *JobStatus
	Owner      string
	Freelancer string
	Limit      int
	Offset     int
}
