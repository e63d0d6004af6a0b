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
package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromOptions(t *testing.T) {
	store, err := NewWithOptions(
		WithHost("db.internal"),
		WithPort(3307),
		WithUser("worker"),
		WithPassword("secret"),
		WithSSLMode("skip-verify"),
	)
	require.NoError(t, err)
	cfg, err := store.config()
	require.NoError(t, err)
	assert.Equal(t, "db.internal:3307", cfg.Addr)
	assert.Equal(t, "worker", cfg.User)
	assert.Equal(t, "worksync", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "skip-verify", cfg.Params["tls"])
}

func TestConfigFromDSN(t *testing.T) {
	store, err := NewWithOptions(
		WithDSN("user:pass@tcp(localhost:3306)/jobs"),
	)
	require.NoError(t, err)
	cfg, err := store.config()
	require.NoError(t, err)
	assert.Equal(t, "jobs", cfg.DBName)
	assert.True(t, cfg.ParseTime)

	store, err = NewWithOptions(WithDSN("not a dsn"))
	require.NoError(t, err)
	_, err = store.config()
	require.Error(t, err)
}
