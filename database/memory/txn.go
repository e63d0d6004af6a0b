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

package memory

import (
	"slices"
	"sort"
	"time"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/database/types"
)

// memTxn operates directly on the store maps while the store lock is held.
// Every write pushes an undo func so a failed Update can be reverted.
type memTxn struct {
	store     *Store
	undo      []func()
	readWrite bool
}

func (t *memTxn) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTxn) writable() error {
	if !t.readWrite {
		return types.ErrReadOnlyTxn
	}
	return nil
}

func restoreMapEntry[K comparable, V any](m map[K]V, key K) func() {
	prev, existed := m[key]
	return func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	}
}

func cloneUser(u models.User) *models.User {
	u.Skills = slices.Clone(u.Skills)
	return &u
}

func cloneJob(j models.Job) models.Job {
	j.Skills = slices.Clone(j.Skills)
	return j
}

func cloneDelivery(d models.Delivery) *models.Delivery {
	d.PayloadHash = slices.Clone(d.PayloadHash)
	d.Commitment = slices.Clone(d.Commitment)
	d.Key = slices.Clone(d.Key)
	return &d
}

// Users

func (t *memTxn) GetUser(address string) (*models.User, error) {
	u, ok := t.store.users[address]
	if !ok {
		return nil, types.ErrNotFound
	}
	return cloneUser(u), nil
}

func (t *memTxn) CreateUser(user *models.User) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.store.users[user.Address]; ok {
		return types.ErrAlreadyExists
	}
	t.undo = append(t.undo, restoreMapEntry(t.store.users, user.Address))
	t.store.users[user.Address] = *cloneUser(*user)
	return nil
}

func (t *memTxn) UpdateUser(user *models.User) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.store.users[user.Address]; !ok {
		return types.ErrNotFound
	}
	t.undo = append(t.undo, restoreMapEntry(t.store.users, user.Address))
	t.store.users[user.Address] = *cloneUser(*user)
	return nil
}

func (t *memTxn) CountUsers() (uint64, error) {
	return uint64(len(t.store.users)), nil
}

// Balances and journal

func (t *memTxn) GetBalance(address string) (uint64, error) {
	return t.store.accounts[address].Balance, nil
}

func (t *memTxn) SetBalance(address string, balance uint64) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.undo = append(t.undo, restoreMapEntry(t.store.accounts, address))
	t.store.accounts[address] = models.Account{
		Address:   address,
		Balance:   balance,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (t *memTxn) AddLedgerEntry(entry *models.LedgerEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	prevLen := len(t.store.entries)
	t.undo = append(t.undo, func() {
		t.store.entries = t.store.entries[:prevLen]
	})
	entry.ID = uint64(prevLen) + 1
	t.store.entries = append(t.store.entries, *entry)
	return nil
}

func (t *memTxn) ListLedgerEntries(
	address string,
	limit int,
) ([]models.LedgerEntry, error) {
	var ret []models.LedgerEntry
	// Newest first
	for i := len(t.store.entries) - 1; i >= 0; i-- {
		entry := t.store.entries[i]
		if address != "" && entry.From != address && entry.To != address {
			continue
		}
		ret = append(ret, entry)
		if limit > 0 && len(ret) >= limit {
			break
		}
	}
	return ret, nil
}

// Jobs

func (t *memTxn) CreateJob(job *models.Job) error {
	if err := t.writable(); err != nil {
		return err
	}
	prevID := t.store.lastJobID
	t.undo = append(t.undo, func() {
		delete(t.store.jobs, prevID+1)
		t.store.lastJobID = prevID
	})
	t.store.lastJobID++
	job.ID = t.store.lastJobID
	job.Version = 1
	t.store.jobs[job.ID] = cloneJob(*job)
	return nil
}

func (t *memTxn) GetJob(id uint64) (*models.Job, error) {
	j, ok := t.store.jobs[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	ret := cloneJob(j)
	return &ret, nil
}

func (t *memTxn) UpdateJob(job *models.Job) error {
	if err := t.writable(); err != nil {
		return err
	}
	stored, ok := t.store.jobs[job.ID]
	if !ok {
		return types.ErrNotFound
	}
	if stored.Version != job.Version {
		return types.ErrVersionConflict
	}
	t.undo = append(t.undo, restoreMapEntry(t.store.jobs, job.ID))
	job.Version++
	t.store.jobs[job.ID] = cloneJob(*job)
	// The caller's copy must match the stored version if the txn is undone
	t.undo = append(t.undo, func() { job.Version-- })
	return nil
}

func jobMatches(job *models.Job, filter models.JobFilter) bool {
	if filter.Owner != "" && job.Owner != filter.Owner {
		return false
	}
	if filter.Freelancer != "" && job.Freelancer != filter.Freelancer {
		return false
	}
	if filter.Category != nil && job.Category != *filter.Category {
		return false
	}
	if filter.Status != nil && job.Status != *filter.Status {
		return false
	}
	return true
}

func (t *memTxn) ListJobs(filter models.JobFilter) ([]models.Job, error) {
	ret := []models.Job{}
	skipped := 0
	for id := uint64(1); id <= t.store.lastJobID; id++ {
		job, ok := t.store.jobs[id]
		if !ok || !jobMatches(&job, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		ret = append(ret, cloneJob(job))
		if filter.Limit > 0 && len(ret) >= filter.Limit {
			break
		}
	}
	return ret, nil
}

func (t *memTxn) CountJobs() (uint64, error) {
	return uint64(len(t.store.jobs)), nil
}

// Applications

func (t *memTxn) CreateApplication(app *models.Application) error {
	if err := t.writable(); err != nil {
		return err
	}
	prevID := t.store.lastAppID
	prevJobApps := t.store.appsByJob[app.JobID]
	t.undo = append(t.undo, func() {
		delete(t.store.applications, prevID+1)
		t.store.lastAppID = prevID
		if prevJobApps == nil {
			delete(t.store.appsByJob, app.JobID)
		} else {
			t.store.appsByJob[app.JobID] = prevJobApps
		}
	})
	t.store.lastAppID++
	app.ID = t.store.lastAppID
	t.store.applications[app.ID] = *app
	t.store.appsByJob[app.JobID] = append(
		slices.Clone(prevJobApps),
		app.ID,
	)
	return nil
}

func (t *memTxn) UpdateApplication(app *models.Application) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.store.applications[app.ID]; !ok {
		return types.ErrNotFound
	}
	t.undo = append(t.undo, restoreMapEntry(t.store.applications, app.ID))
	t.store.applications[app.ID] = *app
	return nil
}

func (t *memTxn) ListApplications(jobID uint64) ([]models.Application, error) {
	ids := t.store.appsByJob[jobID]
	ret := make([]models.Application, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, t.store.applications[id])
	}
	return ret, nil
}

func (t *memTxn) ListApplicationsByApplicant(
	address string,
) ([]models.Application, error) {
	ret := []models.Application{}
	for id := uint64(1); id <= t.store.lastAppID; id++ {
		app, ok := t.store.applications[id]
		if ok && app.Applicant == address {
			ret = append(ret, app)
		}
	}
	return ret, nil
}

// Deliveries

func (t *memTxn) GetDelivery(jobID uint64) (*models.Delivery, error) {
	d, ok := t.store.deliveries[jobID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return cloneDelivery(d), nil
}

func (t *memTxn) PutDelivery(delivery *models.Delivery) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.undo = append(
		t.undo,
		restoreMapEntry(t.store.deliveries, delivery.JobID),
	)
	t.store.deliveries[delivery.JobID] = *cloneDelivery(*delivery)
	return nil
}

func (t *memTxn) PutPayload(key string, data []byte) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.undo = append(t.undo, restoreMapEntry(t.store.payloads, key))
	t.store.payloads[key] = slices.Clone(data)
	return nil
}

func (t *memTxn) GetPayload(key string) ([]byte, error) {
	data, ok := t.store.payloads[key]
	if !ok {
		return nil, types.ErrBlobKeyNotFound
	}
	return slices.Clone(data), nil
}

// Reviews

func (t *memTxn) CreateReview(review *models.Review) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, err := t.GetReview(review.JobID, review.Reviewer); err == nil {
		return types.ErrAlreadyExists
	}
	prevID := t.store.lastReviewID
	t.undo = append(t.undo, func() {
		delete(t.store.reviews, prevID+1)
		t.store.lastReviewID = prevID
	})
	t.store.lastReviewID++
	review.ID = t.store.lastReviewID
	t.store.reviews[review.ID] = *review
	return nil
}

func (t *memTxn) GetReview(
	jobID uint64,
	reviewer string,
) (*models.Review, error) {
	for _, review := range t.store.reviews {
		if review.JobID == jobID && review.Reviewer == reviewer {
			return &review, nil
		}
	}
	return nil, types.ErrNotFound
}

func (t *memTxn) listReviews(match func(*models.Review) bool) []models.Review {
	ret := []models.Review{}
	for _, review := range t.store.reviews {
		if match(&review) {
			ret = append(ret, review)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

func (t *memTxn) ListReviewsByJob(jobID uint64) ([]models.Review, error) {
	return t.listReviews(func(r *models.Review) bool {
		return r.JobID == jobID
	}), nil
}

func (t *memTxn) ListReviewsByReviewee(address string) ([]models.Review, error) {
	return t.listReviews(func(r *models.Review) bool {
		return r.Reviewee == address
	}), nil
}

// Disputes

func (t *memTxn) GetDispute(jobID uint64) (*models.Dispute, error) {
	d, ok := t.store.disputes[jobID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &d, nil
}

func (t *memTxn) PutDispute(dispute *models.Dispute) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.undo = append(t.undo, restoreMapEntry(t.store.disputes, dispute.JobID))
	t.store.disputes[dispute.JobID] = *dispute
	return nil
}

// Events

func (t *memTxn) AppendEvent(record *models.EventRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	key := eventKey{jobID: record.JobID, sequence: record.Sequence}
	if _, ok := t.store.eventKeys[key]; ok {
		return types.ErrAlreadyExists
	}
	prevLen := len(t.store.events)
	t.undo = append(t.undo, func() {
		t.store.events = t.store.events[:prevLen]
		delete(t.store.eventKeys, key)
	})
	record.Position = uint64(prevLen) + 1
	t.store.eventKeys[key] = struct{}{}
	t.store.events = append(t.store.events, *record)
	return nil
}

func (t *memTxn) ListEvents(
	afterPosition uint64,
	limit int,
) ([]models.EventRecord, error) {
	if afterPosition >= uint64(len(t.store.events)) {
		return []models.EventRecord{}, nil
	}
	// Positions are 1-based and dense
	tmpEvents := t.store.events[afterPosition:]
	if limit > 0 && len(tmpEvents) > limit {
		tmpEvents = tmpEvents[:limit]
	}
	return slices.Clone(tmpEvents), nil
}

func (t *memTxn) ListJobEvents(jobID uint64) ([]models.EventRecord, error) {
	ret := []models.EventRecord{}
	for _, evt := range t.store.events {
		if evt.JobID == jobID {
			ret = append(ret, evt)
		}
	}
	return ret, nil
}
