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
	"strings"
	"time"
)

type DisputeOutcome uint8

const (
	DisputeOutcomeNone    DisputeOutcome = 0
	DisputeOutcomeRelease DisputeOutcome = 1
	DisputeOutcomeRefund  DisputeOutcome = 2
)

func (o DisputeOutcome) String() string {
	switch o {
	case DisputeOutcomeNone:
		return "None"
	case DisputeOutcomeRelease:
		return "Release"
	case DisputeOutcomeRefund:
		return "Refund"
	default:
		return fmt.Sprintf("DisputeOutcome(%d)", uint8(o))
	}
}

func (o DisputeOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *DisputeOutcome) UnmarshalText(data []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(data))) {
	case "release":
		*o = DisputeOutcomeRelease
	case "refund":
		*o = DisputeOutcomeRefund
	default:
		return fmt.Errorf("invalid dispute outcome %q", string(data))
	}
	return nil
}

type Dispute struct {
	CreatedAt   time.Time      `                                      json:"createdAt"`
	ResolvedAt  *time.Time     `                                      json:"resolvedAt,omitempty"`
	RaisedBy    string         `gorm:"size:128"                       json:"raisedBy"`
	Reason      string         `                                      json:"reason"`
	ResolvedBy  string         `gorm:"size:128"                       json:"resolvedBy,omitempty"`
	Note        string         `                                      json:"note,omitempty"`
	JobID       uint64         `gorm:"primaryKey;autoIncrement:false" json:"jobId"`
	PriorStatus JobStatus      `                                      json:"priorStatus"`
	Outcome     DisputeOutcome `                                      json:"outcome"`
}

func (Dispute) TableName() string {
	return "dispute"
}
