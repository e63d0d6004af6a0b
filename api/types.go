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
package api

import (
	"time"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/ledger"
)

// Amounts are unit-currency decimal strings, such as "1.5"

type RegisterRequest struct {
	Name   string      `json:"name"   validate:"required,max=256"`
	Email  string      `json:"email"  validate:"omitempty,email"`
	Bio    string      `json:"bio"    validate:"max=4096"`
	Avatar string      `json:"avatar" validate:"omitempty,url"`
	Skills []string    `json:"skills" validate:"max=32,dive,max=64"`
	Role   models.Role `json:"role"`
}

type UpdateProfileRequest struct {
	Name   *string  `json:"name"   validate:"omitempty,max=256"`
	Email  *string  `json:"email"  validate:"omitempty,email"`
	Bio    *string  `json:"bio"    validate:"omitempty,max=4096"`
	Avatar *string  `json:"avatar" validate:"omitempty,url"`
	Skills []string `json:"skills" validate:"omitempty,max=32,dive,max=64"`
}

type UserResponse struct {
	*models.User
	ReputationLevel string `json:"reputationLevel"`
}

type DepositRequest struct {
	Address string `json:"address" validate:"required"`
	Amount  string `json:"amount"  validate:"required"`
}

type WithdrawRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type AccountResponse struct {
	Address string               `json:"address"`
	Balance string               `json:"balance"`
	Entries []models.LedgerEntry `json:"entries"`
}

type PostJobRequest struct {
	Deadline    time.Time       `json:"deadline"    validate:"required"`
	Title       string          `json:"title"       validate:"required,max=256"`
	Description string          `json:"description" validate:"max=16384"`
	Budget      string          `json:"budget"      validate:"required"`
	Skills      []string        `json:"skills"      validate:"max=32,dive,max=64"`
	Category    models.Category `json:"category"`
}

type JobResponse struct {
	models.Job
	BudgetAmount string `json:"budgetAmount"`
	EscrowAmount string `json:"escrowAmount"`
}

type ApplyRequest struct {
	Proposal     string `json:"proposal"     validate:"required,max=8192"`
	BidAmount    string `json:"bidAmount"`
	DeliveryDays uint32 `json:"deliveryDays" validate:"max=3650"`
}

type SelectRequest struct {
	Applicant string `json:"applicant" validate:"required"`
}

// SubmitWorkRequest carries the sealed work product as base64 and the
// commitment to its plaintext as hex
type SubmitWorkRequest struct {
	Payload    string `json:"payload"    validate:"required,base64"`
	Commitment string `json:"commitment" validate:"required,hexadecimal,len=64"`
}

type ShareKeyRequest struct {
	Key string `json:"key" validate:"required,hexadecimal"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=4096"`
}

type ResolveRequest struct {
	Note    string                `json:"note"    validate:"max=4096"`
	Outcome models.DisputeOutcome `json:"outcome" validate:"required"`
}

type ReviewRequest struct {
	Reviewee string `json:"reviewee" validate:"required"`
	Comment  string `json:"comment"  validate:"max=4096"`
	Rating   uint16 `json:"rating"   validate:"required"`
}

type DeliveryResponse struct {
	models.Delivery
	// Payload is base64 encoded by encoding/json
	Payload []byte `json:"payload"`
	// Key is hex encoded once shared
	Key string `json:"key,omitempty"`
}

type StatsResponse struct {
	*ledger.Stats
	EscrowHeldAmount string `json:"escrowHeldAmount"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}
