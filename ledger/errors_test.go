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
	"fmt"
	"testing"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	status := models.JobStatusSubmitted
	testDefs := []struct {
		err  error
		kind string
	}{
		{err: nil, kind: ""},
		{err: errors.New("disk full"), kind: ""},
		{err: ErrKeyNotShared, kind: "KeyNotShared"},
		{err: &Error{Op: "completeJob", Err: ErrKeyNotShared, JobID: 3, Status: &status}, kind: "KeyNotShared"},
		{err: fmt.Errorf("wrapped: %w", newError("postJob", ErrInsufficientFunds)), kind: "InsufficientFunds"},
		// Several sentinels in one error resolve the same way every time
		{err: errors.Join(ErrInvalidState, ErrConflict), kind: "Conflict"},
		{err: errors.Join(ErrNotOwner, ErrInvalidState), kind: "NotOwner"},
		{err: errors.Join(ErrInvalidAmount, ErrNotRegistered), kind: "NotRegistered"},
	}
	for _, testDef := range testDefs {
		for range 20 {
			assert.Equal(t, testDef.kind, Kind(testDef.err), "%v", testDef.err)
		}
	}
	assert.True(t, IsRetryable(errors.Join(ErrInvalidState, ErrConflict)))
	assert.False(t, IsRetryable(ErrInvalidState))
}

func TestErrorKindsComplete(t *testing.T) {
	seen := make(map[string]bool)
	for _, entry := range errorKinds {
		assert.False(t, seen[entry.kind], "duplicate kind %s", entry.kind)
		seen[entry.kind] = true
		assert.Equal(t, entry.kind, Kind(entry.err))
	}
	assert.Equal(t, "Conflict", errorKinds[0].kind)
}
