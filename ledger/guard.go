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
	"strconv"
	"sync"
)

// inflightGuard tracks entities with a mutation in progress. A second
// mutation on a busy entity is refused rather than queued
type inflightGuard struct {
	busy map[string]struct{}
	mu   sync.Mutex
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{
		busy: make(map[string]struct{}),
	}
}

// tryAcquire marks all keys busy, or none of them if any is already busy
func (g *inflightGuard) tryAcquire(keys ...string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, key := range keys {
		if _, ok := g.busy[key]; ok {
			return nil, false
		}
	}
	for _, key := range keys {
		g.busy[key] = struct{}{}
	}
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for _, key := range keys {
			delete(g.busy, key)
		}
	}, true
}

func jobKey(jobID uint64) string {
	return "job:" + strconv.FormatUint(jobID, 10)
}

func userKey(address string) string {
	return "user:" + address
}
