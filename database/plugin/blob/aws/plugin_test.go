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
package aws

import (
	"context"
	"testing"

	"github.com/blinklabs-io/worksync/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testDefs := []struct {
		dataDir        string
		expectedBucket string
		expectedPrefix string
		expectErr      bool
	}{
		{dataDir: "s3://bucket", expectedBucket: "bucket"},
		{
			dataDir:        "s3://bucket/deliveries",
			expectedBucket: "bucket",
			expectedPrefix: "deliveries/",
		},
		{
			dataDir:        "s3://bucket/a/b/",
			expectedBucket: "bucket",
			expectedPrefix: "a/b/",
		},
		{dataDir: "gcs://bucket", expectErr: true},
		{dataDir: "s3://", expectErr: true},
	}
	for _, testDef := range testDefs {
		store, err := New(testDef.dataDir, nil, nil)
		if testDef.expectErr {
			assert.Error(t, err, testDef.dataDir)
			continue
		}
		require.NoError(t, err, testDef.dataDir)
		assert.Equal(t, testDef.expectedBucket, store.bucket)
		assert.Equal(t, testDef.expectedPrefix, store.prefix)
	}
}

func TestNewFromCmdlineOptions(t *testing.T) {
	cmdlineOptionsMutex.Lock()
	orig := cmdlineOptions
	cmdlineOptions.bucket = "test-bucket"
	cmdlineOptions.region = "us-east-1"
	cmdlineOptions.prefix = "test-prefix"
	cmdlineOptionsMutex.Unlock()
	defer func() {
		cmdlineOptionsMutex.Lock()
		cmdlineOptions = orig
		cmdlineOptionsMutex.Unlock()
	}()

	p := NewFromCmdlineOptions()
	store, ok := p.(*BlobStoreS3)
	require.True(t, ok, "expected *BlobStoreS3, got %T", p)
	assert.Equal(t, "test-bucket", store.bucket)
	assert.Equal(t, "us-east-1", store.region)
	assert.Equal(t, "test-prefix/", store.prefix)
}

func TestUnstartedStoreUnavailable(t *testing.T) {
	store, err := NewWithOptions(WithBucket("bucket"))
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "k")
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
	err = store.Set(context.Background(), "k", []byte("v"))
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
}
