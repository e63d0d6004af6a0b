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
	"errors"
	"net/http"
	"strconv"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 500
)

var ErrInvalidPaginationParameters = errors.New(
	"invalid pagination parameters",
)

// PaginationParams contains parsed pagination query values
type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination parses the limit and offset query parameters and clamps
// them to the allowed range
func ParsePagination(r *http.Request) (PaginationParams, error) {
	params := PaginationParams{
		Limit: DefaultPageLimit,
	}
	query := r.URL.Query()
	if limitParam := query.Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return PaginationParams{}, ErrInvalidPaginationParameters
		}
		params.Limit = limit
	}
	if offsetParam := query.Get("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil || offset < 0 {
			return PaginationParams{}, ErrInvalidPaginationParameters
		}
		params.Offset = offset
	}
	if params.Limit < 1 {
		params.Limit = 1
	}
	if params.Limit > MaxPageLimit {
		params.Limit = MaxPageLimit
	}
	return params, nil
}

// parseUintParam parses an optional unsigned query parameter
func parseUintParam(r *http.Request, name string) (uint64, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}
	return strconv.ParseUint(value, 10, 64)
}
