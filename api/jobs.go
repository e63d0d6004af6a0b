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
	"strconv"

	"github.com/blinklabs-io/worksync/database/models"
	"github.com/blinklabs-io/worksync/ledger"
	"github.com/go-chi/chi/v5"
)

func (a *Api) jobResponse(job *models.Job) JobResponse {
	return JobResponse{
		Job:          *job,
		BudgetAmount: a.formatAmount(job.Budget),
		EscrowAmount: a.formatAmount(job.Escrow),
	}
}

// jobID parses the {id} URL parameter, writing an error response if it is
// not a job id
func jobID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeBadRequest(w, "invalid job id")
		return 0, false
	}
	return id, true
}

// handlePostJob handles POST /v1/jobs
func (a *Api) handlePostJob(w http.ResponseWriter, r *http.Request) {
	var req PostJobRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	budget, err := a.parseAmount(req.Budget)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	job, err := a.ledger.PostJob(r.Context(), callerFrom(r.Context()), ledger.JobDetails{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Skills:      req.Skills,
		Budget:      budget,
		Deadline:    req.Deadline,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.jobResponse(job))
}

// handleListJobs handles GET /v1/jobs with optional owner, freelancer,
// category and status filters
func (a *Api) handleListJobs(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	query := r.URL.Query()
	filter := models.JobFilter{
		Owner:      query.Get("owner"),
		Freelancer: query.Get("freelancer"),
		Limit:      params.Limit,
		Offset:     params.Offset,
	}
	if value := query.Get("category"); value != "" {
		category, err := models.ParseCategory(value)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter.Category = &category
	}
	if value := query.Get("status"); value != "" {
		status, err := models.ParseJobStatus(value)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter.Status = &status
	}
	jobs, err := a.ledger.ListJobs(r.Context(), filter)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	ret := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		ret = append(ret, a.jobResponse(&jobs[i]))
	}
	writeJSON(w, http.StatusOK, ret)
}

func (a *Api) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := a.ledger.GetJob(r.Context(), id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.jobResponse(job))
}

func (a *Api) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := a.ledger.CancelJob(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.jobResponse(job))
}

// handleApply handles POST /v1/jobs/{id}/applications
func (a *Api) handleApply(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req ApplyRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var bid uint64
	if req.BidAmount != "" {
		var err error
		if bid, err = a.parseAmount(req.BidAmount); err != nil {
			a.writeLedgerError(w, r, err)
			return
		}
	}
	app, err := a.ledger.ApplyForJob(r.Context(), callerFrom(r.Context()), id, ledger.ApplicationDetails{
		Proposal:     req.Proposal,
		BidAmount:    bid,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (a *Api) handleListApplications(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	apps, err := a.ledger.ListApplications(r.Context(), id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// handleSelect handles POST /v1/jobs/{id}/select
func (a *Api) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	job, err := a.ledger.SelectFreelancer(r.Context(), callerFrom(r.Context()), id, req.Applicant)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.jobResponse(job))
}

// handleComplete handles POST /v1/jobs/{id}/complete
func (a *Api) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	job, err := a.ledger.CompleteJob(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.jobResponse(job))
}

// handleDispute handles POST /v1/jobs/{id}/dispute
func (a *Api) handleDispute(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req ReasonRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	dispute, err := a.ledger.RaiseDispute(r.Context(), callerFrom(r.Context()), id, req.Reason)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dispute)
}

// handleResolve handles POST /v1/jobs/{id}/resolve
func (a *Api) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req ResolveRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	job, err := a.ledger.ResolveDispute(r.Context(), callerFrom(r.Context()), id, ledger.Resolution{
		Outcome: req.Outcome,
		Note:    req.Note,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.jobResponse(job))
}

// handleReview handles POST /v1/jobs/{id}/reviews
func (a *Api) handleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := a.decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	review, err := a.ledger.SubmitReview(r.Context(), callerFrom(r.Context()), id, ledger.ReviewDetails{
		Reviewee: req.Reviewee,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (a *Api) handleJobReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	reviews, err := a.ledger.ListReviews(r.Context(), id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (a *Api) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.ledger.Stats(r.Context())
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:            stats,
		EscrowHeldAmount: a.formatAmount(stats.EscrowHeld),
	})
}
