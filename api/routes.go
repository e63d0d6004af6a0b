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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns the API router
func (a *Api) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDs)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/health", a.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/users/{address}", a.handleGetUser)
		r.Get("/users/{address}/reviews", a.handleUserReviews)
		r.Get("/users/{address}/applications", a.handleUserApplications)
		r.Get("/jobs", a.handleListJobs)
		r.Get("/jobs/{id}", a.handleGetJob)
		r.Get("/jobs/{id}/applications", a.handleListApplications)
		r.Get("/jobs/{id}/reviews", a.handleJobReviews)
		r.Get("/stats", a.handleStats)
		r.Get("/events", a.handleEvents)
		r.Get("/events/ws", a.handleEventStream)

		r.Group(func(r chi.Router) {
			r.Use(a.requireCaller)
			r.Post("/users", a.handleRegister)
			r.Patch("/users/me", a.handleUpdateProfile)
			r.Get("/accounts/me", a.handleAccount)
			r.Post("/accounts/deposit", a.handleDeposit)
			r.Post("/accounts/withdraw", a.handleWithdraw)
			r.Post("/jobs", a.handlePostJob)
			r.Post("/jobs/{id}/cancel", a.handleCancelJob)
			r.Post("/jobs/{id}/applications", a.handleApply)
			r.Post("/jobs/{id}/select", a.handleSelect)
			r.Post("/jobs/{id}/delivery", a.handleSubmitWork)
			r.Get("/jobs/{id}/delivery", a.handleGetDelivery)
			r.Post("/jobs/{id}/delivery/key", a.handleShareKey)
			r.Post("/jobs/{id}/delivery/reject", a.handleRejectDelivery)
			r.Post("/jobs/{id}/complete", a.handleComplete)
			r.Post("/jobs/{id}/dispute", a.handleDispute)
			r.Post("/jobs/{id}/resolve", a.handleResolve)
			r.Post("/jobs/{id}/reviews", a.handleReview)
		})
	})
	return r
}
