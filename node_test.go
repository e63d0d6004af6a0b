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
package worksync

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/worksync/api"
	"github.com/blinklabs-io/worksync/internal/devnet"
	"github.com/blinklabs-io/worksync/internal/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokenSecret = []byte(strings.Repeat("s", api.MinSecretSize))

func TestNewValidation(t *testing.T) {
	testDefs := []struct {
		name string
		opts []ConfigOptionFunc
	}{
		{
			name: "no operator",
			opts: nil,
		},
		{
			name: "fee too high",
			opts: []ConfigOptionFunc{WithOperator("op"), WithFeeBps(10001)},
		},
		{
			name: "api without secret",
			opts: []ConfigOptionFunc{WithOperator("op"), WithApiListenAddress(":0")},
		},
		{
			name: "short secret",
			opts: []ConfigOptionFunc{
				WithOperator("op"),
				WithApiListenAddress(":0"),
				WithTokenSecret([]byte("short")),
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := New(NewConfig(testDef.opts...))
			require.Error(t, err)
		})
	}
}

func TestNodeDevRun(t *testing.T) {
	scenario, err := devnet.DefaultScenario()
	require.NoError(t, err)
	n, err := New(NewConfig(
		WithInMemory(true),
		WithOperator("operator"),
		WithApiListenAddress("127.0.0.1:0"),
		WithTokenSecret(testTokenSecret),
		WithSeedScenario(scenario),
		WithShutdownTimeout(5*time.Second),
	))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	testutil.RequireClosed(t, n.Ready(), testutil.DefaultTimeout, "node to start")

	resp, err := http.Get("http://" + n.ApiAddr() + "/v1/jobs?owner=alice") //nolint:noctx
	require.NoError(t, err)
	var jobs []api.JobResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jobs))
	resp.Body.Close()
	require.Len(t, jobs, 2)

	stats, err := n.LedgerState().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.TotalUsers)
	assert.Equal(t, uint64(1_500_000), stats.EscrowHeld)

	token, err := n.Tokens().Issue("bob", time.Minute)
	require.NoError(t, err)
	subject, err := n.Tokens().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", subject)

	require.NoError(t, n.Stop())
	require.NoError(t, testutil.RequireReceive(t, errCh, testutil.DefaultTimeout, "node to stop"))
	require.NoError(t, n.Stop())
}
