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

type ApplicationStatus uint8

const (
	ApplicationStatusPending  ApplicationStatus = 0
	ApplicationStatusAccepted ApplicationStatus = 1
	ApplicationStatusRejected ApplicationStatus = 2
)

var applicationStatusNames = map[ApplicationStatus]string{
	ApplicationStatusPending:  "Pending",
	ApplicationStatusAccepted: "Accepted",
	ApplicationStatusRejected: "Rejected",
}

func (s ApplicationStatus) String() string {
	if name, ok := applicationStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ApplicationStatus(%d)", uint8(s))
}

func (s ApplicationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ApplicationStatus) UnmarshalText(data []byte) error {
	tmp, err := parseEnum(string(data), applicationStatusNames)
	if err != nil {
		return fmt.Errorf("invalid application status %q", string(data))
	}
	*s = tmp
	return nil
}

type Application struct {
	CreatedAt    time.Time         `                                json:"createdAt"`
	UpdatedAt    time.Time         `                                json:"updatedAt"`
	Applicant    string            `gorm:"index;size:128"           json:"applicant"`
	Proposal     string            `                                json:"proposal"`
	ID           uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID        uint64            `gorm:"index"                    json:"jobId"`
	BidAmount    uint64            `                                json:"bidAmount"`
	DeliveryDays uint32            `                                json:"deliveryDays"`
	Status       ApplicationStatus `gorm:"index"                    json:"status"`
}

func (Application) TableName() string {
	return "application"
}
