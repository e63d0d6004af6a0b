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
package event

import "sync"

// Deduper filters repeated job events. Events for one job arrive in sequence
// order, so remembering the highest sequence seen per job is enough
type Deduper struct {
	lastSeq map[uint64]uint64
	mu      sync.Mutex
}

func NewDeduper() *Deduper {
	return &Deduper{
		lastSeq: make(map[uint64]uint64),
	}
}

// Accept returns true the first time an event is offered and records it
func (d *Deduper) Accept(evt JobEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if evt.Sequence <= d.lastSeq[evt.JobID] {
		return false
	}
	d.lastSeq[evt.JobID] = evt.Sequence
	return true
}

// LastSequence returns the highest accepted sequence number for a job
func (d *Deduper) LastSequence(jobID uint64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeq[jobID]
}
