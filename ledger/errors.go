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
package ledger

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/worksync/database/models"
)

var (
	ErrNotRegistered         = errors.New("address is not registered")
	ErrAlreadyRegistered     = errors.New("address is already registered")
	ErrInvalidProfile        = errors.New("invalid profile")
	ErrRoleNotAllowed        = errors.New("role does not allow this action")
	ErrJobNotOpen            = errors.New("job is not open for applications")
	ErrInvalidState          = errors.New("invalid state for this transition")
	ErrNotOwner              = errors.New("caller is not the job owner")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrDuplicateApplication  = errors.New("duplicate application")
	ErrKeyNotShared          = errors.New("decryption key has not been shared")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrJobNotCompleted       = errors.New("job is not completed")
	ErrNotParticipant        = errors.New("caller is not a job participant")
	ErrDuplicateReview       = errors.New("duplicate review")
	ErrConflict              = errors.New("concurrent mutation in progress")
	ErrJobNotFound           = errors.New("job not found")
	ErrInvalidJob            = errors.New("invalid job details")
	ErrInvalidApplication    = errors.New("invalid application")
	ErrInvalidDelivery       = errors.New("invalid delivery")
	ErrInvalidRating         = errors.New("rating out of range")
	ErrKeyMismatch           = errors.New("key does not match committed delivery")
	ErrNotSelectedFreelancer = errors.New("caller is not the selected freelancer")
	ErrNotOperator           = errors.New("caller is not the platform operator")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidResolution     = errors.New("invalid dispute resolution")
)

// errorKinds is checked in order, so an error wrapping several sentinels
// always reports the same kind. Conflict comes first
var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrConflict, "Conflict"},
	{ErrNotRegistered, "NotRegistered"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrInvalidProfile, "InvalidProfile"},
	{ErrRoleNotAllowed, "RoleNotAllowed"},
	{ErrJobNotOpen, "JobNotOpen"},
	{ErrInvalidState, "InvalidState"},
	{ErrNotOwner, "NotOwner"},
	{ErrApplicationNotFound, "ApplicationNotFound"},
	{ErrDuplicateApplication, "DuplicateApplication"},
	{ErrKeyNotShared, "KeyNotShared"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrJobNotCompleted, "JobNotCompleted"},
	{ErrNotParticipant, "NotParticipant"},
	{ErrDuplicateReview, "DuplicateReview"},
	{ErrJobNotFound, "JobNotFound"},
	{ErrInvalidJob, "InvalidJob"},
	{ErrInvalidApplication, "InvalidApplication"},
	{ErrInvalidDelivery, "InvalidDelivery"},
	{ErrInvalidRating, "InvalidRating"},
	{ErrKeyMismatch, "KeyMismatch"},
	{ErrNotSelectedFreelancer, "NotSelectedFreelancer"},
	{ErrNotOperator, "NotOperator"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrInvalidResolution, "InvalidResolution"},
}

// Error is returned by every failed ledger operation. It carries the
// operation name and, for job operations, the job id and the status the job
// was in when the call was rejected
type Error struct {
	Err    error
	Status *models.JobStatus
	Op     string
	JobID  uint64
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	if e.JobID != 0 {
		msg += fmt.Sprintf(" (job %d", e.JobID)
		if e.Status != nil {
			msg += ", status " + e.Status.String()
		}
		msg += ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

func jobError(op string, job *models.Job, err error) *Error {
	ret := &Error{Op: op, Err: err}
	if job != nil {
		ret.JobID = job.ID
		status := job.Status
		ret.Status = &status
	}
	return ret
}

// Kind returns the machine-checkable error kind, such as "InvalidState", or
// an empty string for errors that did not come from the ledger rules
func Kind(err error) string {
	for _, entry := range errorKinds {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return ""
}

// IsRetryable returns true if the caller may retry the call unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
