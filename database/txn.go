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
package database

import (
	"context"
	"errors"

	"github.com/blinklabs-io/worksync/database/types"
	"gorm.io/gorm"
)

// Txn implements types.StoreTxn on top of a gorm transaction and the blob
// store
type Txn struct {
	ctx       context.Context
	db        *Database
	tx        *gorm.DB
	readWrite bool
}

func newTxn(
	ctx context.Context,
	db *Database,
	tx *gorm.DB,
	readWrite bool,
) *Txn {
	return &Txn{ctx: ctx, db: db, tx: tx, readWrite: readWrite}
}

// DB returns the database the transaction belongs to
func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the underlying gorm transaction
func (t *Txn) Metadata() *gorm.DB {
	return t.tx
}

func (t *Txn) writable() error {
	if !t.readWrite {
		return types.ErrReadOnlyTxn
	}
	return nil
}

// notFound maps a gorm lookup miss to types.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrNotFound
	}
	return err
}

// exists reports whether a row of model matches the query
func (t *Txn) exists(model any, query string, args ...any) (bool, error) {
	var count int64
	if err := t.tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PutPayload stores a delivery payload in the blob store
func (t *Txn) PutPayload(key string, data []byte) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.db.blob.Set(t.ctx, key, data)
}

// GetPayload returns a delivery payload from the blob store
func (t *Txn) GetPayload(key string) ([]byte, error) {
	return t.db.blob.Get(t.ctx, key)
}
