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
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

const (
	DefaultDecimals = 6
	DefaultFeeBps   = 250
	MaxFeeBps       = 10000
)

var maxAmount = decimal.NewFromUint64(math.MaxUint64)

// ParseAmount converts a unit-currency string such as "1.5" into base units
func ParseAmount(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	base := d.Shift(decimals)
	if !base.Equal(base.Truncate(0)) {
		return 0, errors.Join(
			ErrInvalidAmount,
			errors.New("amount has more precision than the currency allows"),
		)
	}
	if base.GreaterThan(maxAmount) {
		return 0, ErrInvalidAmount
	}
	return base.BigInt().Uint64(), nil
}

// FormatAmount renders base units as a unit-currency string
func FormatAmount(amount uint64, decimals int32) string {
	return decimal.NewFromUint64(amount).Shift(-decimals).String()
}

// PlatformFee returns floor(amount * bps / 10000) without overflowing
func PlatformFee(amount uint64, bps uint64) uint64 {
	return amount/MaxFeeBps*bps + amount%MaxFeeBps*bps/MaxFeeBps
}

func addBalance(balance uint64, amount uint64) (uint64, error) {
	if balance > math.MaxUint64-amount {
		return 0, ErrInvalidAmount
	}
	return balance + amount, nil
}
