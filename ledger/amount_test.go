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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	testDefs := []struct {
		input    string
		expected uint64
		err      bool
	}{
		{input: "1", expected: 1_000_000},
		{input: "0.5", expected: 500_000},
		{input: "1.000001", expected: 1_000_001},
		{input: "0.0000001", err: true},
		{input: "-1", err: true},
		{input: "abc", err: true},
		{input: "18446744073709.551616", err: true},
		{input: "18446744073709.551615", expected: math.MaxUint64},
	}
	for _, testDef := range testDefs {
		amount, err := ParseAmount(testDef.input, DefaultDecimals)
		if testDef.err {
			require.ErrorIs(t, err, ErrInvalidAmount, testDef.input)
			continue
		}
		require.NoError(t, err, testDef.input)
		assert.Equal(t, testDef.expected, amount, testDef.input)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1", FormatAmount(1_000_000, DefaultDecimals))
	assert.Equal(t, "0.975", FormatAmount(975_000, DefaultDecimals))
	assert.Equal(t, "0.000001", FormatAmount(1, DefaultDecimals))
}

func TestPlatformFee(t *testing.T) {
	assert.Equal(t, uint64(25_000), PlatformFee(1_000_000, DefaultFeeBps))
	assert.Equal(t, uint64(12_500), PlatformFee(500_000, DefaultFeeBps))
	assert.Equal(t, uint64(0), PlatformFee(39, DefaultFeeBps))
	assert.Equal(t, uint64(1), PlatformFee(40, DefaultFeeBps))
	assert.Equal(t, uint64(0), PlatformFee(1_000_000, 0))
	assert.Equal(t, uint64(math.MaxUint64), PlatformFee(math.MaxUint64, MaxFeeBps))
	assert.Equal(
		t,
		uint64(math.MaxUint64/10000*250+math.MaxUint64%10000*250/10000),
		PlatformFee(math.MaxUint64, DefaultFeeBps),
	)
}

func TestAddBalanceOverflow(t *testing.T) {
	_, err := addBalance(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	bal, err := addBalance(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), bal)
}
