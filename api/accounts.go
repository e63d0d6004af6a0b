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
	"net/http"

	"github.com/blinklabs-io/worksync/ledger"
)

const accountEntryLimit = 100

func (a *Api) parseAmount(s string) (uint64, error) {
	return ledger.ParseAmount(s, a.config.Decimals)
}

func (a *Api) formatAmount(amount uint64) string {
	return ledger.FormatAmount(amount, a.config.Decimals)
}

// handleAccount handles GET /v1/accounts/me
func (a *Api) handleAccount(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	balance, err := a.ledger.Balance(r.Context(), caller)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	entries, err := a.ledger.Entries(r.Context(), caller, accountEntryLimit)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address: caller,
		Balance: a.formatAmount(balance),
		Entries: entries,
	})
}

// handleDeposit handles POST /v1/accounts/deposit. Only the operator may
// credit accounts
func (a *Api) handleDeposit(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	if !a.ledger.IsOperator(caller) {
		a.writeLedgerError(w, r, &ledger.Error{Op: "deposit", Err: ledger.ErrNotOperator})
		return
	}
	var req DepositRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	amount, err := a.parseAmount(req.Amount)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	balance, err := a.ledger.Deposit(r.Context(), req.Address, amount)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address: req.Address,
		Balance: a.formatAmount(balance),
	})
}

// handleWithdraw handles POST /v1/accounts/withdraw
func (a *Api) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	var req WithdrawRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	amount, err := a.parseAmount(req.Amount)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	balance, err := a.ledger.Withdraw(r.Context(), caller, amount)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address: caller,
		Balance: a.formatAmount(balance),
	})
}
