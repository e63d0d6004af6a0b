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
package devnet

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/worksync/database/memory"
	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) *ledger.LedgerState {
	t.Helper()
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Store: memory.New(),
		Now: func() time.Time {
			return testNow
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ls.EventBus().Close()
		_ = ls.Close()
	})
	return ls
}

func TestDefaultScenario(t *testing.T) {
	scenario, err := DefaultScenario()
	require.NoError(t, err)
	require.Len(t, scenario.Users, 2)
	require.Len(t, scenario.Jobs, 2)
	assert.Equal(t, models.RoleBoth, scenario.Users[0].Role)
	assert.Equal(t, models.RoleFreelancer, scenario.Users[1].Role)
	assert.Equal(t, "UI/UX Design", scenario.Jobs[1].Category.String())
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	ls := newLedger(t)
	scenario, err := DefaultScenario()
	require.NoError(t, err)
	now := testNow
	result, err := Seed(ctx, ls, scenario, SeedConfig{Now: now})
	require.NoError(t, err)
	require.Len(t, result.Users, 2)
	require.Len(t, result.Jobs, 2)

	assert.Equal(t, uint64(1_000_000), result.Jobs[0].Escrow)
	assert.True(t, now.Add(30*24*time.Hour).Equal(result.Jobs[0].Deadline))
	assert.Equal(t, uint64(500_000), result.Jobs[1].Escrow)
	assert.True(t, now.Add(14*24*time.Hour).Equal(result.Jobs[1].Deadline))
	// Alice was funded with 2.0 and escrowed 1.5
	balance, err := ls.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), balance)

	_, err = Seed(ctx, ls, scenario, SeedConfig{Now: now})
	require.ErrorIs(t, err, ErrAlreadySeeded)
}

func TestParseScenarioInvalid(t *testing.T) {
	testDefs := []struct {
		name    string
		content string
	}{
		{name: "missing address", content: "users:\n  - name: X\n"},
		{name: "duplicate user", content: "users:\n  - address: a\n  - address: a\n"},
		{name: "unknown owner", content: "jobs:\n  - owner: z\n    title: T\n    deadlineDays: 1\n"},
		{name: "no deadline", content: "users:\n  - address: a\njobs:\n  - owner: a\n    title: T\n"},
		{name: "bad role", content: "users:\n  - address: a\n    role: Boss\n"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(testDef.content))
			require.Error(t, err)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := "users:\n  - address: carol\n    name: Carol\n    role: Client\n    funds: \"0.25\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, scenario.Users, 1)
	assert.Equal(t, models.RoleClient, scenario.Users[0].Role)

	ls := newLedger(t)
	result, err := Seed(context.Background(), ls, scenario, SeedConfig{})
	require.NoError(t, err)
	require.Len(t, result.Users, 1)
	balance, err := ls.Balance(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, uint64(250_000), balance)
}
