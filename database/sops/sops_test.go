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
package sops_test

import (
	"testing"

	"filippo.io/age"
	"github.com/blinklabs-io/worksync/database/sops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAgeKey(t *testing.T) {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	t.Setenv(sops.EnvAgeRecipients, identity.Recipient().String())
	t.Setenv("SOPS_AGE_KEY", identity.String())
	t.Setenv(sops.EnvGcpKmsID, "")
	t.Setenv(sops.EnvAwsKmsArns, "")
}

func TestNoMasterKeys(t *testing.T) {
	t.Setenv(sops.EnvAgeRecipients, "")
	t.Setenv(sops.EnvGcpKmsID, "")
	t.Setenv(sops.EnvAwsKmsArns, "")
	_, err := sops.NewKeyWrapper()
	require.ErrorIs(t, err, sops.ErrNoMasterKeys)
}

func TestKeyWrapRoundTrip(t *testing.T) {
	setupAgeKey(t)
	wrapper, err := sops.NewKeyWrapper()
	require.NoError(t, err)
	key := []byte{0x00, 0xff, 0x10, 0x80, 0x7f}
	wrapped, err := wrapper.Wrap(key)
	require.NoError(t, err)
	assert.NotContains(t, string(wrapped), "00ff10807f")
	unwrapped, err := wrapper.Unwrap(wrapped)
	require.NoError(t, err)
	assert.Equal(t, key, unwrapped)
}
