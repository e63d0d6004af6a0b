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
package mysql

import (
	"sync"

	"github.com/blinklabs-io/worksync/database/plugin"
)

var (
	cmdlineOptions struct {
		host     string
		user     string
		password string
		database string
		sslMode  string
		timeZone string
		dsn      string
		port     uint64
		maxConns int
	}
	cmdlineOptionsMutex sync.RWMutex
)

// initCmdlineOptions sets default values for cmdlineOptions. There is no
// default password
func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.host = "localhost"
	cmdlineOptions.port = 3306
	cmdlineOptions.user = "root"
	cmdlineOptions.database = "worksync"
	cmdlineOptions.timeZone = "UTC"
}

// Register plugin
func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "mysql",
			Description:        "MySQL relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "host",
					Type:         plugin.PluginOptionTypeString,
					Description:  "MySQL host",
					DefaultValue: "localhost",
					CustomEnvVar: "MYSQL_HOST",
					Dest:         &(cmdlineOptions.host),
				},
				{
					Name:         "port",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "MySQL port",
					DefaultValue: uint64(3306),
					CustomEnvVar: "MYSQL_PORT",
					Dest:         &(cmdlineOptions.port),
				},
				{
					Name:         "user",
					Type:         plugin.PluginOptionTypeString,
					Description:  "MySQL user",
					DefaultValue: "root",
					CustomEnvVar: "MYSQL_USER",
					Dest:         &(cmdlineOptions.user),
				},
				{
					Name:         "password",
					Type:         plugin.PluginOptionTypeString,
					Description:  "MySQL password",
					DefaultValue: "",
					CustomEnvVar: "MYSQL_PASSWORD",
					Dest:         &(cmdlineOptions.password),
				},
				{
					Name:         "database",
					Type:         plugin.PluginOptionTypeString,
					Description:  "MySQL database name, created if missing",
					DefaultValue: "worksync",
					CustomEnvVar: "MYSQL_DATABASE",
					Dest:         &(cmdlineOptions.database),
				},
				{
					Name:         "ssl-mode",
					Type:         plugin.PluginOptionTypeString,
					Description:  "MySQL TLS mode (mapped to tls= in DSN)",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.sslMode),
				},
				{
					Name:         "timezone",
					Type:         plugin.PluginOptionTypeString,
					Description:  "MySQL time zone location",
					DefaultValue: "UTC",
					Dest:         &(cmdlineOptions.timeZone),
				},
				{
					Name:         "dsn",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Full MySQL DSN, overrides the other connection options",
					DefaultValue: "",
					Dest:         &(cmdlineOptions.dsn),
				},
				{
					Name:         "max-connections",
					Type:         plugin.PluginOptionTypeInt,
					Description:  "Maximum number of open connections (0 for no limit)",
					DefaultValue: 0,
					Dest:         &(cmdlineOptions.maxConns),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := []MysqlOptionFunc{
		WithHost(cmdlineOptions.host),
		WithPort(uint(cmdlineOptions.port)),
		WithUser(cmdlineOptions.user),
		WithPassword(cmdlineOptions.password),
		WithDatabase(cmdlineOptions.database),
		WithSSLMode(cmdlineOptions.sslMode),
		WithTimeZone(cmdlineOptions.timeZone),
		WithDSN(cmdlineOptions.dsn),
		WithMaxConnections(cmdlineOptions.maxConns),
	}
	cmdlineOptionsMutex.RUnlock()
	p, err := NewWithOptions(opts...)
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
