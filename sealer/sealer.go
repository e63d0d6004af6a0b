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
// Package sealer encrypts work products for delivery. A freelancer seals the
// plaintext, submits the ciphertext and commitment, and later shares the key
package sealer

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize        = chacha20poly1305.KeySize
	CommitmentSize = sha256.Size
)

var (
	ErrInvalidKey         = errors.New("invalid key size")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrDecryptFailed      = errors.New("ciphertext could not be opened with key")
	ErrCommitmentMismatch = errors.New("plaintext does not match commitment")
	ErrInvalidCommitment  = errors.New("invalid commitment size")
)

// Sealed is the result of sealing a work product
type Sealed struct {
	// Ciphertext is the nonce followed by the XChaCha20-Poly1305 output
	Ciphertext []byte
	Key        []byte
	Commitment []byte
}

// Commit returns the commitment hash of a plaintext
func Commit(plaintext []byte) []byte {
	sum := sha256.Sum256(plaintext)
	return sum[:]
}

// NewKey returns a random 256-bit key
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext with a fresh random key
func Seal(plaintext []byte) (*Sealed, error) {
	key, err := NewKey()
	if err != nil {
		return nil, err
	}
	ciphertext, err := SealWithKey(plaintext, key)
	if err != nil {
		return nil, err
	}
	return &Sealed{
		Ciphertext: ciphertext,
		Key:        key,
		Commitment: Commit(plaintext),
	}, nil
}

// SealWithKey encrypts plaintext with the provided key and a random nonce
func SealWithKey(plaintext []byte, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a sealed ciphertext
func Open(ciphertext []byte, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce, body := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// Verify checks that key opens ciphertext to a plaintext matching commitment
func Verify(ciphertext []byte, key []byte, commitment []byte) error {
	if len(commitment) != CommitmentSize {
		return ErrInvalidCommitment
	}
	plaintext, err := Open(ciphertext, key)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(Commit(plaintext), commitment) != 1 {
		return ErrCommitmentMismatch
	}
	return nil
}
