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
package main

import (
	"log/slog"
	"os"

	"github.com/blinklabs-io/worksync/internal/node"
	"github.com/spf13/cobra"
)

func seedCommand() *cobra.Command {
	var scenarioPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users and jobs into the configured database",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := configFromCommand(cmd)
			logger := commonRun()
			if err := node.Seed(cmd.Context(), cfg, logger, scenarioPath); err != nil {
				slog.Error(err.Error())
				os.Exit(1)
			}
		},
	}
	cmd.Flags().
		StringVar(&scenarioPath, "scenario", "", "path to a scenario YAML file (default: built-in demo)")
	return cmd
}
