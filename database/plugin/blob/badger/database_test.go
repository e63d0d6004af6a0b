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
package badger

import (
	"context"
	"testing"

	"github.com/blinklabs-io/worksync/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	b := &BlobStoreBadger{}
	registry := prometheus.NewRegistry()
	WithDataDir("/tmp/combined")(b)
	WithBlockCacheSize(1000000)(b)
	WithIndexCacheSize(2000000)(b)
	WithGc(false)(b)
	WithPromRegistry(registry)(b)
	assert.Equal(t, "/tmp/combined", b.dataDir)
	assert.Equal(t, uint64(1000000), b.blockCacheSize)
	assert.Equal(t, uint64(2000000), b.indexCacheSize)
	assert.False(t, b.gcEnabled)
	assert.Equal(t, registry, b.promRegistry)
}

func TestInMemoryRoundTrip(t *testing.T) {
	registry := prometheus.NewRegistry()
	store, err := New(WithDataDir(""), WithPromRegistry(registry))
	require.NoError(t, err)
	defer store.Close()
	assert.False(t, store.gcEnabled, "GC should be disabled in memory")
	ctx := context.Background()

	_, err = store.Get(ctx, "delivery/1/abcd")
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	require.NoError(t, store.Set(ctx, "delivery/1/abcd", []byte("ciphertext")))
	data, err := store.Get(ctx, "delivery/1/abcd")
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), data)

	require.NoError(t, store.Delete(ctx, "delivery/1/abcd"))
	_, err = store.Get(ctx, "delivery/1/abcd")
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	count, err := testutil.GatherAndCount(
		registry,
		"database_blob_ops_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "expected get, set and delete series")
}

func TestOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := New(WithDataDir(dir), WithGc(true))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())
	// Close is idempotent
	require.NoError(t, store.Close())

	store, err = New(WithDataDir(dir), WithGc(false))
	require.NoError(t, err)
	defer store.Close()
	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}
