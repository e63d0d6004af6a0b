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

type DeliveryStatus uint8

const (
	DeliveryStatusPending  DeliveryStatus = 0
	DeliveryStatusRejected DeliveryStatus = 1
)

var deliveryStatusNames = map[DeliveryStatus]string{
	DeliveryStatusPending:  "Pending",
	DeliveryStatusRejected: "Rejected",
}

func (s DeliveryStatus) String() string {
	if name, ok := deliveryStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DeliveryStatus(%d)", uint8(s))
}

func (s DeliveryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DeliveryStatus) UnmarshalText(data []byte) error {
	tmp, err := parseEnum(string(data), deliveryStatusNames)
	if err != nil {
		return fmt.Errorf("invalid delivery status %q", string(data))
	}
	*s = tmp
	return nil
}

// Delivery holds the metadata for the encrypted work product of a job. The
// ciphertext itself lives in the blob store under PayloadKey.
type Delivery struct {
	SubmittedAt  time.Time      `                                      json:"submittedAt"`
	KeySharedAt  *time.Time     `                                      json:"keySharedAt,omitempty"`
	RejectedAt   *time.Time     `                                      json:"rejectedAt,omitempty"`
	PayloadKey   string         `gorm:"size:256"                       json:"-"`
	RejectReason string         `                                      json:"rejectReason,omitempty"`
	PayloadHash  []byte         `gorm:"size:32"                        json:"payloadHash"`
	Commitment   []byte         `gorm:"size:32"                        json:"commitment"`
	Key          []byte         `                                      json:"-"`
	JobID        uint64         `gorm:"primaryKey;autoIncrement:false" json:"jobId"`
	PayloadSize  uint64         `                                      json:"payloadSize"`
	Revision     uint32         `                                      json:"revision"`
	Status       DeliveryStatus `                                      json:"status"`
	KeyShared    bool           `                                      json:"keyShared"`
}

func (Delivery) TableName() string {
	return "delivery"
}
