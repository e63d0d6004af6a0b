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
// Package sops wraps stored delivery decryption keys with SOPS master keys so
// that a leaked metadata database does not expose shared keys
package sops

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	sopsapi "github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	sopsage "github.com/getsops/sops/v3/age"
	scommon "github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/getsops/sops/v3/gcpkms"
	skeys "github.com/getsops/sops/v3/keys"
	awskms "github.com/getsops/sops/v3/kms"
	jsonstore "github.com/getsops/sops/v3/stores/json"
	"github.com/getsops/sops/v3/version"
)

const (
	EnvAgeRecipients = "WORKSYNC_SOPS_AGE_RECIPIENTS"
	EnvGcpKmsID      = "WORKSYNC_GCP_KMS_RESOURCE_ID"
	EnvAwsKmsArns    = "WORKSYNC_AWS_KMS_KEY_ARNS"
	EnvAwsKmsProfile = "WORKSYNC_AWS_KMS_PROFILE"
)

var ErrNoMasterKeys = errors.New(
	"SOPS requires at least one master key to encrypt: set " +
		EnvAgeRecipients + ", " + EnvGcpKmsID + " and/or " + EnvAwsKmsArns,
)

var ErrAlreadyEncrypted = errors.New("already encrypted")

func Decrypt(data []byte) ([]byte, error) {
	ret, err := decrypt.Data(data, "binary")
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func Encrypt(data []byte) ([]byte, error) {
	storeConfig := &config.JSONBinaryStoreConfig{}
	input := jsonstore.NewBinaryStore(storeConfig)
	output := jsonstore.NewBinaryStore(storeConfig)

	// prevent double encryption
	branches, err := input.LoadPlainFile(data)
	if err != nil {
		return nil, fmt.Errorf("error loading data: %w", err)
	}
	for _, branch := range branches {
		for _, b := range branch {
			if b.Key == "sops" {
				return nil, ErrAlreadyEncrypted
			}
		}
	}

	tree := sopsapi.Tree{Branches: branches}
	keyGroups, err := MasterKeyGroupsFromEnv()
	if err != nil {
		return nil, err
	}
	tree.Metadata = sopsapi.Metadata{
		KeyGroups: keyGroups,
		Version:   version.Version,
	}

	dataKey, errs := tree.GenerateDataKey()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed generating data key: %v", errs)
	}
	if err := scommon.EncryptTree(scommon.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  aes.NewCipher(),
	}); err != nil {
		return nil, fmt.Errorf("failed encrypt: %w", err)
	}

	encrypted, err := output.EmitEncryptedFile(tree)
	if err != nil {
		return nil, fmt.Errorf("failed output: %w", err)
	}
	return encrypted, nil
}

// MasterKeyGroupsFromEnv builds one key group per configured key source
func MasterKeyGroupsFromEnv() ([]sopsapi.KeyGroup, error) {
	keyGroups := []sopsapi.KeyGroup{}

	if recipients := strings.TrimSpace(os.Getenv(EnvAgeRecipients)); recipients != "" {
		ageKeys, err := sopsage.MasterKeysFromRecipients(recipients)
		if err != nil {
			return nil, fmt.Errorf("invalid age recipients: %w", err)
		}
		keys := []skeys.MasterKey{}
		for _, k := range ageKeys {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if rid := os.Getenv(EnvGcpKmsID); rid != "" {
		keys := []skeys.MasterKey{}
		for _, k := range gcpkms.MasterKeysFromResourceIDString(rid) {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if arns := os.Getenv(EnvAwsKmsArns); arns != "" {
		keys := []skeys.MasterKey{}
		profile := os.Getenv(EnvAwsKmsProfile)
		for _, k := range awskms.MasterKeysFromArnString(arns, nil, profile) {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if len(keyGroups) == 0 {
		return nil, ErrNoMasterKeys
	}

	return keyGroups, nil
}

// KeyWrapper seals delivery keys before they are written to the metadata
// store. Keys are hex encoded first because the SOPS binary store carries
// its data as a JSON string
type KeyWrapper struct{}

// NewKeyWrapper returns a wrapper after checking that master keys are
// configured
func NewKeyWrapper() (*KeyWrapper, error) {
	if _, err := MasterKeyGroupsFromEnv(); err != nil {
		return nil, err
	}
	return &KeyWrapper{}, nil
}

func (w *KeyWrapper) Wrap(key []byte) ([]byte, error) {
	return Encrypt([]byte(hex.EncodeToString(key)))
}

func (w *KeyWrapper) Unwrap(wrapped []byte) ([]byte, error) {
	plain, err := Decrypt(wrapped)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(strings.TrimSpace(string(plain)))
}
