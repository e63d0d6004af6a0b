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
	"encoding/base64"
	"encoding/hex"
	"net/http"

	"github.com/blinklabs-io/worksync/ledger"
)

// handleSubmitWork handles POST /v1/jobs/{id}/delivery
func (a *Api) handleSubmitWork(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req SubmitWorkRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		writeBadRequest(w, "payload is not valid base64")
		return
	}
	commitment, err := hex.DecodeString(req.Commitment)
	if err != nil {
		writeBadRequest(w, "commitment is not valid hex")
		return
	}
	delivery, err := a.ledger.SubmitWork(r.Context(), callerFrom(r.Context()), id, ledger.Submission{
		Payload:    payload,
		Commitment: commitment,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, DeliveryResponse{Delivery: *delivery})
}

// handleGetDelivery handles GET /v1/jobs/{id}/delivery
func (a *Api) handleGetDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	view, err := a.ledger.GetDelivery(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	resp := DeliveryResponse{
		Delivery: view.Delivery,
		Payload:  view.Payload,
	}
	if view.Key != nil {
		resp.Key = hex.EncodeToString(view.Key)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleShareKey handles POST /v1/jobs/{id}/delivery/key
func (a *Api) handleShareKey(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req ShareKeyRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	key, err := hex.DecodeString(req.Key)
	if err != nil {
		writeBadRequest(w, "key is not valid hex")
		return
	}
	if err := a.ledger.ShareDecryptionKey(r.Context(), callerFrom(r.Context()), id, key); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRejectDelivery handles POST /v1/jobs/{id}/delivery/reject
func (a *Api) handleRejectDelivery(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req ReasonRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := a.ledger.RejectDelivery(r.Context(), callerFrom(r.Context()), id, req.Reason); err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
