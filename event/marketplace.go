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
package event

import (
	"encoding/json"
	"time"

	"github.com/blinklabs-io/worksync/database/models"
)

// MarketplaceEventType carries every job event in commit order
const MarketplaceEventType EventType = "marketplace.event"

const (
	JobPostedEventType          EventType = "job.posted"
	JobAppliedEventType         EventType = "job.applied"
	FreelancerSelectedEventType EventType = "job.freelancer_selected"
	WorkSubmittedEventType      EventType = "job.work_submitted"
	KeySharedEventType          EventType = "job.key_shared"
	DeliveryRejectedEventType   EventType = "job.delivery_rejected"
	PaymentReleasedEventType    EventType = "job.payment_released"
	JobCompletedEventType       EventType = "job.completed"
	JobCancelledEventType       EventType = "job.cancelled"
	JobDisputedEventType        EventType = "job.disputed"
	ReviewSubmittedEventType    EventType = "job.review_submitted"
)

// Account and profile notices are not part of the job log and are published
// asynchronously
const (
	UserRegisteredEventType EventType = "user.registered"
	ProfileUpdatedEventType EventType = "user.profile_updated"
	FundsDepositedEventType EventType = "account.deposited"
	FundsWithdrawnEventType EventType = "account.withdrawn"
)

// JobEventTypes returns all event types that are recorded in the job log
func JobEventTypes() []EventType {
	return []EventType{
		JobPostedEventType,
		JobAppliedEventType,
		FreelancerSelectedEventType,
		WorkSubmittedEventType,
		KeySharedEventType,
		DeliveryRejectedEventType,
		PaymentReleasedEventType,
		JobCompletedEventType,
		JobCancelledEventType,
		JobDisputedEventType,
		ReviewSubmittedEventType,
	}
}

// JobEvent is a job state transition as recorded in the event log. Sequence
// is gap-free per job and Position is global
type JobEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      EventType       `json:"type"`
	Actor     string          `json:"actor"`
	Data      json.RawMessage `json:"data,omitempty"`
	JobID     uint64          `json:"jobId"`
	Sequence  uint64          `json:"sequence"`
	Position  uint64          `json:"position"`
}

// NewJobEvent builds an unsequenced job event with the given payload
func NewJobEvent(
	eventType EventType,
	jobID uint64,
	actor string,
	data any,
) (JobEvent, error) {
	evt := JobEvent{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Actor:     actor,
		JobID:     jobID,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return evt, err
		}
		evt.Data = raw
	}
	return evt, nil
}

// Decode unmarshals the event payload into dest
func (e JobEvent) Decode(dest any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, dest)
}

func (e JobEvent) Record() models.EventRecord {
	return models.EventRecord{
		CreatedAt: e.Timestamp,
		Type:      string(e.Type),
		Actor:     e.Actor,
		Payload:   []byte(e.Data),
		Position:  e.Position,
		JobID:     e.JobID,
		Sequence:  e.Sequence,
	}
}

func JobEventFromRecord(rec models.EventRecord) JobEvent {
	evt := JobEvent{
		Timestamp: rec.CreatedAt.UTC(),
		Type:      EventType(rec.Type),
		Actor:     rec.Actor,
		JobID:     rec.JobID,
		Sequence:  rec.Sequence,
		Position:  rec.Position,
	}
	if len(rec.Payload) > 0 {
		evt.Data = json.RawMessage(rec.Payload)
	}
	return evt
}

type JobPostedEvent struct {
	Owner    string          `json:"owner"`
	Title    string          `json:"title"`
	Budget   uint64          `json:"budget"`
	Category models.Category `json:"category"`
}

type JobAppliedEvent struct {
	Applicant     string `json:"applicant"`
	ApplicationID uint64 `json:"applicationId"`
	BidAmount     uint64 `json:"bidAmount"`
}

type FreelancerSelectedEvent struct {
	Freelancer    string   `json:"freelancer"`
	Rejected      []uint64 `json:"rejectedApplications,omitempty"`
	ApplicationID uint64   `json:"applicationId"`
}

type WorkSubmittedEvent struct {
	PayloadHash []byte `json:"payloadHash"`
	Commitment  []byte `json:"commitment"`
	PayloadSize uint64 `json:"payloadSize"`
	Revision    uint32 `json:"revision"`
}

// KeySharedEvent never carries the key itself
type KeySharedEvent struct {
	Verified bool   `json:"verified"`
	Revision uint32 `json:"revision"`
}

type DeliveryRejectedEvent struct {
	Reason   string `json:"reason,omitempty"`
	Revision uint32 `json:"revision"`
}

type PaymentReleasedEvent struct {
	Freelancer string `json:"freelancer"`
	Treasury   string `json:"treasury"`
	Amount     uint64 `json:"amount"`
	Fee        uint64 `json:"fee"`
}

type JobCompletedEvent struct {
	Freelancer string `json:"freelancer"`
	// ByResolution is set when the job was completed by dispute resolution
	ByResolution bool `json:"byResolution,omitempty"`
}

type JobCancelledEvent struct {
	Owner        string `json:"owner"`
	Refund       uint64 `json:"refund"`
	ByResolution bool   `json:"byResolution,omitempty"`
}

type JobDisputedEvent struct {
	RaisedBy    string           `json:"raisedBy"`
	Reason      string           `json:"reason"`
	PriorStatus models.JobStatus `json:"priorStatus"`
}

type ReviewSubmittedEvent struct {
	Reviewer   string `json:"reviewer"`
	Reviewee   string `json:"reviewee"`
	Rating     uint16 `json:"rating"`
	Reputation uint32 `json:"reputation"`
}

type UserEvent struct {
	Address string      `json:"address"`
	Role    models.Role `json:"role"`
}

type AccountEvent struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Balance uint64 `json:"balance"`
}
