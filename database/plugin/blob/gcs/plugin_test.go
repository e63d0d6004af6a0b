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
package gcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/worksync/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialValidation(t *testing.T) {
	tempDir := t.TempDir()
	validFile := filepath.Join(tempDir, "credentials.json")
	require.NoError(t, os.WriteFile(validFile, []byte("{}"), 0o600))

	tests := []struct {
		name         string
		path         string
		errorMessage string
	}{
		{name: "valid credentials file", path: validFile},
		{
			name:         "nonexistent credentials file",
			path:         filepath.Join(tempDir, "missing.json"),
			errorMessage: "GCS credentials file does not exist",
		},
		{
			name:         "directory",
			path:         tempDir,
			errorMessage: "is a directory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCredentials(tt.path)
			if tt.errorMessage == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)
		})
	}
}

func TestStartRequiresBucket(t *testing.T) {
	store, err := NewWithOptions()
	require.NoError(t, err)
	require.ErrorContains(t, store.Start(), "bucket not set")
}

func TestNewParsesBucket(t *testing.T) {
	store, err := New("gcs://payloads", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "payloads", store.bucketName)
	_, err = New("payloads", nil, nil)
	require.Error(t, err)
}

func TestNewFromCmdlineOptions(t *testing.T) {
	cmdlineOptionsMutex.Lock()
	orig := cmdlineOptions
	cmdlineOptions.bucket = "test-bucket"
	cmdlineOptionsMutex.Unlock()
	defer func() {
		cmdlineOptionsMutex.Lock()
		cmdlineOptions = orig
		cmdlineOptionsMutex.Unlock()
	}()
	p := NewFromCmdlineOptions()
	store, ok := p.(*BlobStoreGCS)
	require.True(t, ok)
	assert.Equal(t, "test-bucket", store.bucketName)
	_, err := store.Get(context.Background(), "k")
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
}
