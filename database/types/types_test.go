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

package types_test

import (
	"testing"

	"github.com/blinklabs-io/worksync/database/types"
)

func TestDeliveryBlobKey(t *testing.T) {
	testDefs := []struct {
		hash     []byte
		expected string
		jobID    uint64
	}{
		{
			jobID:    1,
			hash:     []byte{0xde, 0xad, 0xbe, 0xef},
			expected: "delivery/1/deadbeef",
		},
		{
			jobID:    18446744073709551615,
			hash:     []byte{},
			expected: "delivery/18446744073709551615/",
		},
	}
	for _, testDef := range testDefs {
		key := types.DeliveryBlobKey(testDef.jobID, testDef.hash)
		if key != testDef.expected {
			t.Fatalf(
				"did not get expected key: got %q, expected %q",
				key,
				testDef.expected,
			)
		}
	}
}
