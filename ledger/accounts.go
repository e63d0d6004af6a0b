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
package ledger

import (
	"context"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
	"github.com/blinklabs-io/worksync/event"
)

// Deposit credits a registered address. Access to this call is restricted
// to the operator by the API
func (ls *LedgerState) Deposit(
	ctx context.Context,
	address string,
	amount uint64,
) (uint64, error) {
	const op = "deposit"
	if amount == 0 {
		return 0, newError(op, ErrInvalidAmount)
	}
	var ret uint64
	err := ls.mutate(
		ctx,
		op,
		[]string{userKey(address)},
		func(tc *txnContext) error {
			if _, err := loadUser(op, tc.txn, address); err != nil {
				return err
			}
			if err := tc.credit(address, amount); err != nil {
				return err
			}
			if err := tc.journal(models.EntryKindDeposit, 0, "", address, amount); err != nil {
				return err
			}
			balance, err := tc.txn.GetBalance(address)
			if err != nil {
				return err
			}
			tc.notify(
				event.FundsDepositedEventType,
				event.AccountEvent{Address: address, Amount: amount, Balance: balance},
			)
			ret = balance
			return nil
		},
	)
	return ret, err
}

// Withdraw debits the caller's spendable balance
func (ls *LedgerState) Withdraw(
	ctx context.Context,
	caller string,
	amount uint64,
) (uint64, error) {
	const op = "withdraw"
	if amount == 0 {
		return 0, newError(op, ErrInvalidAmount)
	}
	var ret uint64
	err := ls.mutate(
		ctx,
		op,
		[]string{userKey(caller)},
		func(tc *txnContext) error {
			if caller != ls.config.Treasury {
				if _, err := loadUser(op, tc.txn, caller); err != nil {
					return err
				}
			}
			if err := tc.debit(caller, amount); err != nil {
				return err
			}
			if err := tc.journal(models.EntryKindWithdrawal, 0, caller, "", amount); err != nil {
				return err
			}
			balance, err := tc.txn.GetBalance(caller)
			if err != nil {
				return err
			}
			tc.notify(
				event.FundsWithdrawnEventType,
				event.AccountEvent{Address: caller, Amount: amount, Balance: balance},
			)
			ret = balance
			return nil
		},
	)
	return ret, err
}

// Balance returns the spendable balance of an address. Escrowed funds are
// not included
func (ls *LedgerState) Balance(
	ctx context.Context,
	address string,
) (uint64, error) {
	var ret uint64
	err := ls.view(ctx, "balance", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.GetBalance(address)
		return err
	})
	return ret, err
}

// Entries returns journal entries touching address, newest first
func (ls *LedgerState) Entries(
	ctx context.Context,
	address string,
	limit int,
) ([]models.LedgerEntry, error) {
	var ret []models.LedgerEntry
	err := ls.view(ctx, "entries", func(txn types.StoreTxn) error {
		var err error
		ret, err = txn.ListLedgerEntries(address, limit)
		return err
	})
	return ret, err
}
