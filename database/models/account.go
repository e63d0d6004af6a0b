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

// Account holds the spendable balance of an address. Funds held in escrow
// are tracked on the job, not here.
type Account struct {
	UpdatedAt time.Time `                                 json:"updatedAt"`
	Address   string    `gorm:"primaryKey;size:128"       json:"address"`
	Balance   uint64    `                                 json:"balance"`
}

func (Account) TableName() string {
	return "account"
}

type EntryKind string

const (
	EntryKindDeposit       EntryKind = "deposit"
	EntryKindWithdrawal    EntryKind = "withdrawal"
	EntryKindEscrowHold    EntryKind = "escrow_hold"
	EntryKindEscrowRelease EntryKind = "escrow_release"
	EntryKindPlatformFee   EntryKind = "platform_fee"
	EntryKindRefund        EntryKind = "refund"
)

// LedgerEntry is one row of the append-only money movement journal
type LedgerEntry struct {
	CreatedAt time.Time `                                json:"createdAt"`
	Kind      EntryKind `gorm:"index;size:32"            json:"kind"`
	From      string    `gorm:"column:from_address;index;size:128" json:"from,omitempty"`
	To        string    `gorm:"column:to_address;index;size:128"   json:"to,omitempty"`
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID     uint64    `gorm:"index"                    json:"jobId,omitempty"`
	Amount    uint64    `                                json:"amount"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}
