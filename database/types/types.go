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

package types

import (
	"context"
	"errors"

	"github.com/blinklabs-io/worksync/database/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when creating a record whose key is taken
var ErrAlreadyExists = errors.New("record already exists")

// ErrVersionConflict is returned when a job update was based on a stale version
var ErrVersionConflict = errors.New("version conflict")

// ErrReadOnlyTxn is returned when writing through a read-only transaction
var ErrReadOnlyTxn = errors.New("transaction is read-only")

// ErrBlobKeyNotFound is returned by blob operations when a key is missing
var ErrBlobKeyNotFound = errors.New("blob key not found")

// ErrBlobStoreUnavailable is returned when blob store cannot be accessed
var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

// ErrNoStoreAvailable is returned when no blob or metadata store is available
var ErrNoStoreAvailable = errors.New("no store available")

// Store is a ledger persistence backend. Update runs fn in a read-write
// transaction which is committed if fn returns nil and rolled back
// otherwise. Write transactions are serialized.
type Store interface {
	Update(ctx context.Context, fn func(StoreTxn) error) error
	View(ctx context.Context, fn func(StoreTxn) error) error
	Close() error
}

// StoreTxn provides access to all ledger records within a transaction
type StoreTxn interface {
	// Users
	GetUser(address string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
	CountUsers() (uint64, error)

	// Balances and journal
	GetBalance(address string) (uint64, error)
	SetBalance(address string, balance uint64) error
	AddLedgerEntry(entry *models.LedgerEntry) error
	ListLedgerEntries(address string, limit int) ([]models.LedgerEntry, error)

	// Jobs
	CreateJob(job *models.Job) error
	GetJob(id uint64) (*models.Job, error)
	// UpdateJob stores the job if its Version matches the stored record and
	// increments Version, otherwise it returns ErrVersionConflict
	UpdateJob(job *models.Job) error
	ListJobs(filter models.JobFilter) ([]models.Job, error)
	CountJobs() (uint64, error)

	// Applications
	CreateApplication(app *models.Application) error
	UpdateApplication(app *models.Application) error
	ListApplications(jobID uint64) ([]models.Application, error)
	ListApplicationsByApplicant(address string) ([]models.Application, error)

	// Deliveries
	GetDelivery(jobID uint64) (*models.Delivery, error)
	PutDelivery(delivery *models.Delivery) error
	PutPayload(key string, data []byte) error
	GetPayload(key string) ([]byte, error)

	// Reviews
	CreateReview(review *models.Review) error
	GetReview(jobID uint64, reviewer string) (*models.Review, error)
	ListReviewsByJob(jobID uint64) ([]models.Review, error)
	ListReviewsByReviewee(address string) ([]models.Review, error)

	// Disputes
	GetDispute(jobID uint64) (*models.Dispute, error)
	PutDispute(dispute *models.Dispute) error

	// Events
	AppendEvent(record *models.EventRecord) error
	ListEvents(afterPosition uint64, limit int) ([]models.EventRecord, error)
	ListJobEvents(jobID uint64) ([]models.EventRecord, error)
}
