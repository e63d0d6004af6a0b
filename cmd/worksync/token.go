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
	"fmt"
	"time"

	"github.com/blinklabs-io/worksync/api"
	"github.com/blinklabs-io/worksync/internal/node"
	"github.com/spf13/cobra"
)

func tokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Issue an API bearer token for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCommand(cmd)
			tokens, err := api.NewTokenAuthority(node.TokenSecret(cfg))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				if ttl, err = cfg.TokenDuration(); err != nil {
					return err
				}
			}
			token, err := tokens.Issue(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().
		DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry (default: tokenTTL from config)")
	return cmd
}
