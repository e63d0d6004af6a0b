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
package event_test

import (
	"testing"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobEventRecordConversion(t *testing.T) {
	evt, err := event.NewJobEvent(
		event.JobPostedEventType,
		7,
		"addr1",
		event.JobPostedEvent{
			Owner:    "addr1",
			Title:    "Build a website",
			Budget:   1_000_000,
			Category: models.Category(0),
		},
	)
	require.NoError(t, err)
	evt.Sequence = 1
	evt.Position = 42
	rec := evt.Record()
	assert.Equal(t, "job.posted", rec.Type)
	assert.Equal(t, uint64(7), rec.JobID)

	back := event.JobEventFromRecord(rec)
	assert.Equal(t, evt.Type, back.Type)
	assert.Equal(t, uint64(42), back.Position)
	var data event.JobPostedEvent
	require.NoError(t, back.Decode(&data))
	assert.Equal(t, uint64(1_000_000), data.Budget)
	assert.Equal(t, "Build a website", data.Title)
}

func TestDeduper(t *testing.T) {
	d := event.NewDeduper()
	assert.True(t, d.Accept(event.JobEvent{JobID: 1, Sequence: 1}))
	assert.True(t, d.Accept(event.JobEvent{JobID: 1, Sequence: 2}))
	assert.False(t, d.Accept(event.JobEvent{JobID: 1, Sequence: 2}))
	assert.False(t, d.Accept(event.JobEvent{JobID: 1, Sequence: 1}))
	assert.True(t, d.Accept(event.JobEvent{JobID: 2, Sequence: 1}))
	assert.Equal(t, uint64(2), d.LastSequence(1))
	assert.Equal(t, uint64(0), d.LastSequence(3))
}
