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
package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	store, err := NewWithOptions()
	require.NoError(t, err)
	assert.Equal(t, "localhost", store.host)
	assert.Equal(t, uint(5432), store.port)
	assert.Equal(t, "worksync", store.database)
	assert.Equal(
		t,
		"host=localhost user=postgres password= dbname=worksync port=5432 sslmode=disable TimeZone=UTC",
		store.buildDSN(),
	)
}

func TestDSNOverride(t *testing.T) {
	store, err := NewWithOptions(
		WithHost("db"),
		WithDSN("  postgres://u:p@db:5433/jobs  "),
	)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5433/jobs", store.buildDSN())
}

func TestCloseUnstarted(t *testing.T) {
	store, err := NewWithOptions()
	require.NoError(t, err)
	assert.NoError(t, store.Close())
	assert.Nil(t, store.DB())
}
