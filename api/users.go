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
	"net/http"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/ledger"
	"github.com/go-chi/chi/v5"
)

func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (a *Api) userResponse(user *models.User) UserResponse {
	return UserResponse{
		User:            user,
		ReputationLevel: a.ledger.ReputationLevel(user.Reputation),
	}
}

// handleRegister handles POST /v1/users
func (a *Api) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	user, err := a.ledger.Register(r.Context(), callerFrom(r.Context()), ledger.Profile{
		Name:   req.Name,
		Email:  req.Email,
		Bio:    req.Bio,
		Avatar: req.Avatar,
		Skills: req.Skills,
		Role:   req.Role,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.userResponse(user))
}

// handleUpdateProfile handles PATCH /v1/users/me
func (a *Api) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	user, err := a.ledger.UpdateProfile(r.Context(), callerFrom(r.Context()), ledger.ProfileUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Bio:    req.Bio,
		Avatar: req.Avatar,
		Skills: req.Skills,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.userResponse(user))
}

// handleGetUser handles GET /v1/users/{address}
func (a *Api) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.ledger.GetUser(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.userResponse(user))
}

func (a *Api) handleUserReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := a.ledger.ReviewsFor(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (a *Api) handleUserApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := a.ledger.ApplicationsByApplicant(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
