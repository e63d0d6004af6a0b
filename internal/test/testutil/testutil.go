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
// Package testutil holds channel helpers for tests that follow watchers,
// event subscribers and servers running in other goroutines
package testutil

import (
	"testing"
	"time"
)

// DefaultTimeout bounds how long tests wait on other goroutines
const DefaultTimeout = 5 * time.Second

// RequireReceive waits for a value on the given channel or fails the test
// if the timeout expires
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for channel receive: %s", msg)
		var zero T
		return zero // unreachable
	}
}

// ReceiveN collects count values from the channel, failing the test if any
// of them takes longer than timeout
func ReceiveN[T any](
	t *testing.T,
	ch <-chan T,
	count int,
	timeout time.Duration,
) []T {
	t.Helper()
	ret := make([]T, 0, count)
	for i := range count {
		select {
		case v := <-ch:
			ret = append(ret, v)
		case <-time.After(timeout):
			t.Fatalf("timeout waiting for value %d of %d", i+1, count)
		}
	}
	return ret
}

// RequireNoReceive verifies that no value is received on the given channel
// within the specified duration
func RequireNoReceive[T any](
	t *testing.T,
	ch <-chan T,
	duration time.Duration,
	msg string,
) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf(
			"unexpected value received on channel: %v: %s",
			v,
			msg,
		)
	case <-time.After(duration):
	}
}

// RequireClosed waits for a signal channel to be closed
func RequireClosed(
	t *testing.T,
	ch <-chan struct{},
	timeout time.Duration,
	msg string,
) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for %s", msg)
	}
}
