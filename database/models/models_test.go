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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryStatusText(t *testing.T) {
	for _, status := range []DeliveryStatus{
		DeliveryStatusPending,
		DeliveryStatusRejected,
	} {
		data, err := json.Marshal(Delivery{JobID: 7, Status: status})
		require.NoError(t, err)
		var decoded Delivery
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, status, decoded.Status)
		assert.Equal(t, uint64(7), decoded.JobID)
	}
	var status DeliveryStatus
	require.NoError(t, status.UnmarshalText([]byte("rejected")))
	assert.Equal(t, DeliveryStatusRejected, status)
	assert.Error(t, status.UnmarshalText([]byte("Lost")))
	assert.Error(t, status.UnmarshalText([]byte("9")))
}

func TestEnumText(t *testing.T) {
	var jobStatus JobStatus
	require.NoError(t, jobStatus.UnmarshalText([]byte("Submitted")))
	assert.Equal(t, JobStatusSubmitted, jobStatus)
	var role Role
	require.NoError(t, role.UnmarshalText([]byte("both")))
	assert.Equal(t, RoleBoth, role)
	var outcome DisputeOutcome
	assert.Error(t, outcome.UnmarshalText([]byte("Split")))
}
