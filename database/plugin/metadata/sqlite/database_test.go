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
package sqlite_test

import (
	"testing"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/plugin/metadata/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoresAreIsolated(t *testing.T) {
	store1, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	defer store1.Close()
	store2, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	defer store2.Close()

	require.NoError(
		t,
		store1.DB().Create(&models.User{Address: "addr1", Name: "Alice"}).Error,
	)
	var count int64
	require.NoError(t, store1.DB().Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, store2.DB().Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestOnDiskPersists(t *testing.T) {
	dir := t.TempDir()
	store, err := sqlite.New(dir, nil, nil)
	require.NoError(t, err)
	require.NoError(
		t,
		store.DB().Create(&models.User{
			Address: "addr1",
			Skills:  []string{"go", "sql"},
		}).Error,
	)
	require.NoError(t, store.Close())
	// Close is idempotent
	require.NoError(t, store.Close())

	store, err = sqlite.New(dir, nil, nil)
	require.NoError(t, err)
	defer store.Close()
	var user models.User
	require.NoError(t, store.DB().First(&user, "address = ?", "addr1").Error)
	assert.Equal(t, []string{"go", "sql"}, user.Skills)
}
