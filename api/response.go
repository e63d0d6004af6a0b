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
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blinklabs-io/worksync/ledger"
)

// ErrorResponse is the body of every failed request. Error is the ledger
// error kind, such as "InvalidState", or an HTTP status text
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
	JobID   uint64 `json:"jobId,omitempty"`
}

var kindStatus = map[string]int{
	"NotRegistered":         http.StatusForbidden,
	"AlreadyRegistered":     http.StatusConflict,
	"InvalidProfile":        http.StatusBadRequest,
	"RoleNotAllowed":        http.StatusForbidden,
	"JobNotOpen":            http.StatusConflict,
	"InvalidState":          http.StatusConflict,
	"NotOwner":              http.StatusForbidden,
	"ApplicationNotFound":   http.StatusNotFound,
	"DuplicateApplication":  http.StatusConflict,
	"KeyNotShared":          http.StatusConflict,
	"InsufficientFunds":     http.StatusUnprocessableEntity,
	"JobNotCompleted":       http.StatusConflict,
	"NotParticipant":        http.StatusForbidden,
	"DuplicateReview":       http.StatusConflict,
	"Conflict":              http.StatusConflict,
	"JobNotFound":           http.StatusNotFound,
	"InvalidJob":            http.StatusBadRequest,
	"InvalidApplication":    http.StatusBadRequest,
	"InvalidDelivery":       http.StatusBadRequest,
	"InvalidRating":         http.StatusBadRequest,
	"KeyMismatch":           http.StatusUnprocessableEntity,
	"NotSelectedFreelancer": http.StatusForbidden,
	"NotOperator":           http.StatusForbidden,
	"InvalidAmount":         http.StatusBadRequest,
	"InvalidResolution":     http.StatusBadRequest,
}

func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		Error:   errStr,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "BadRequest", message)
}

// writeLedgerError maps a ledger error to its HTTP status. Errors that did
// not come from the ledger rules are logged and reported as internal
func (a *Api) writeLedgerError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	kind := ledger.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		a.logger.Error(
			"request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID(r.Context()),
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"Internal",
			"internal error",
		)
		return
	}
	resp := ErrorResponse{
		Error:   kind,
		Message: err.Error(),
	}
	var ledgerErr *ledger.Error
	if errors.As(err, &ledgerErr) {
		resp.JobID = ledgerErr.JobID
		if ledgerErr.Status != nil {
			resp.Status = ledgerErr.Status.String()
		}
	}
	if ledger.IsRetryable(err) {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, resp)
}
