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

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role describes what a registered address may do on the marketplace
type Role uint8

const (
	RoleClient     Role = 0
	RoleFreelancer Role = 1
	RoleBoth       Role = 2
)

var roleNames = map[Role]string{
	RoleClient:     "Client",
	RoleFreelancer: "Freelancer",
	RoleBoth:       "Both",
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// CanPost returns true if the role is allowed to post jobs
func (r Role) CanPost() bool {
	return r == RoleClient || r == RoleBoth
}

// CanApply returns true if the role is allowed to apply for jobs
func (r Role) CanApply() bool {
	return r == RoleFreelancer || r == RoleBoth
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role: %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(data []byte) error {
	tmp, err := parseEnum(string(data), roleNames)
	if err != nil {
		return fmt.Errorf("invalid role %q", string(data))
	}
	*r = tmp
	return nil
}

type User struct {
	RegisteredAt  time.Time `json:"registeredAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Address       string    `gorm:"primaryKey;size:128"       json:"address"`
	Name          string    `gorm:"size:256"                  json:"name"`
	Email         string    `gorm:"size:256"                  json:"email,omitempty"`
	Bio           string    `                                 json:"bio,omitempty"`
	Avatar        string    `gorm:"size:1024"                 json:"avatar,omitempty"`
	Skills        []string  `gorm:"serializer:json;type:text"           json:"skills"`
	RatingSum     uint64    `                                 json:"-"`
	RatingCount   uint64    `                                 json:"ratingCount"`
	CompletedJobs uint64    `                                 json:"completedJobs"`
	Reputation    uint32    `                                 json:"reputation"`
	Role          Role      `gorm:"index"                     json:"role"`
}

func (User) TableName() string {
	return "user"
}

// parseEnum accepts either the display name (case-insensitive) or the numeric value
func parseEnum[T ~uint8](s string, names map[T]string) (T, error) {
	s = strings.TrimSpace(s)
	for k, v := range names {
		if strings.EqualFold(v, s) {
			return k, nil
		}
	}
	tmp, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	if _, ok := names[T(tmp)]; !ok {
		return 0, fmt.Errorf("unknown value %d", tmp)
	}
	return T(tmp), nil
}
