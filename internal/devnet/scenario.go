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
// Package devnet loads demo marketplace data into a ledger for local
// development
package devnet

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/blinklabs-io/worksync/database/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultScenarioYAML []byte

// Scenario describes the users and jobs to create. Amounts are unit-currency
// decimal strings
type Scenario struct {
	Users []SeedUser `yaml:"users"`
	Jobs  []SeedJob  `yaml:"jobs"`
}

type SeedUser struct {
	Address string      `yaml:"address"`
	Name    string      `yaml:"name"`
	Email   string      `yaml:"email"`
	Bio     string      `yaml:"bio"`
	Avatar  string      `yaml:"avatar"`
	Funds   string      `yaml:"funds"`
	Skills  []string    `yaml:"skills"`
	Role    models.Role `yaml:"role"`
}

type SeedJob struct {
	Owner        string          `yaml:"owner"`
	Title        string          `yaml:"title"`
	Description  string          `yaml:"description"`
	Budget       string          `yaml:"budget"`
	Skills       []string        `yaml:"skills"`
	DeadlineDays uint            `yaml:"deadlineDays"`
	Category     models.Category `yaml:"category"`
}

// DefaultScenario returns the bundled demo scenario: Alice (client and
// freelancer) with funds and two open jobs, and Bob (freelancer)
func DefaultScenario() (*Scenario, error) {
	return ParseScenario(defaultScenarioYAML)
}

// LoadScenario reads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadScenario: reading %s: %w", path, err)
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var ret Scenario
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := ret.validate(); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (s *Scenario) validate() error {
	users := make(map[string]bool, len(s.Users))
	for _, user := range s.Users {
		if user.Address == "" {
			return errors.New("scenario user without address")
		}
		if users[user.Address] {
			return fmt.Errorf("duplicate scenario user %q", user.Address)
		}
		users[user.Address] = true
	}
	for _, job := range s.Jobs {
		if !users[job.Owner] {
			return fmt.Errorf(
				"scenario job %q is owned by unknown user %q",
				job.Title,
				job.Owner,
			)
		}
		if job.DeadlineDays == 0 {
			return fmt.Errorf("scenario job %q has no deadline", job.Title)
		}
	}
	return nil
}
