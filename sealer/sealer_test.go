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
package sealer_test

import (
	"testing"

	"github.com/blinklabs-io/worksync/sealer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenVerify(t *testing.T) {
	plaintext := []byte("final logo files")
	sealed, err := sealer.Seal(plaintext)
	require.NoError(t, err)
	assert.Len(t, sealed.Key, sealer.KeySize)
	assert.Len(t, sealed.Commitment, sealer.CommitmentSize)
	assert.NotContains(t, string(sealed.Ciphertext), "logo")

	opened, err := sealer.Open(sealed.Ciphertext, sealed.Key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
	require.NoError(t, sealer.Verify(sealed.Ciphertext, sealed.Key, sealed.Commitment))
}

func TestVerifyFailures(t *testing.T) {
	sealed, err := sealer.Seal([]byte("work"))
	require.NoError(t, err)
	otherKey, err := sealer.NewKey()
	require.NoError(t, err)

	testDefs := []struct {
		name       string
		ciphertext []byte
		key        []byte
		commitment []byte
		expected   error
	}{
		{
			name:       "wrong key",
			ciphertext: sealed.Ciphertext,
			key:        otherKey,
			commitment: sealed.Commitment,
			expected:   sealer.ErrDecryptFailed,
		},
		{
			name:       "short key",
			ciphertext: sealed.Ciphertext,
			key:        []byte{1, 2, 3},
			commitment: sealed.Commitment,
			expected:   sealer.ErrInvalidKey,
		},
		{
			name:       "wrong commitment",
			ciphertext: sealed.Ciphertext,
			key:        sealed.Key,
			commitment: sealer.Commit([]byte("other work")),
			expected:   sealer.ErrCommitmentMismatch,
		},
		{
			name:       "bad commitment size",
			ciphertext: sealed.Ciphertext,
			key:        sealed.Key,
			commitment: []byte{1},
			expected:   sealer.ErrInvalidCommitment,
		},
		{
			name:       "truncated ciphertext",
			ciphertext: sealed.Ciphertext[:10],
			key:        sealed.Key,
			commitment: sealed.Commitment,
			expected:   sealer.ErrCiphertextTooShort,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := sealer.Verify(
				testDef.ciphertext,
				testDef.key,
				testDef.commitment,
			)
			assert.ErrorIs(t, err, testDef.expected)
		})
	}
}
