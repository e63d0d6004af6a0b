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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

// EnvVarPrefix is prepended to plugin option environment variables, which
// take the form WORKSYNC_DATABASE_<TYPE>_<PLUGIN>_<OPTION>
const EnvVarPrefix = "WORKSYNC_DATABASE"

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return ""
	}
}

func pluginTypeFromName(name string) (PluginType, bool) {
	switch name {
	case "blob":
		return PluginTypeBlob, true
	case "metadata":
		return PluginTypeMetadata, true
	default:
		return 0, false
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	// CustomEnvVar is an additional environment variable, such as the
	// conventional POSTGRES_HOST, checked when the prefixed one is unset
	CustomEnvVar string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin to the registry. It is intended to be called from
// a plugin package's init()
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin built from its current
// options, or nil if no such plugin is registered
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == pluginName {
			return p.NewFromOptionsFunc()
		}
	}
	return nil
}

func (o PluginOption) flagName(
	pluginType PluginType,
	pluginName string,
) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(pluginType),
		pluginName,
		o.Name,
	)
}

func (o PluginOption) envVarName(
	pluginType PluginType,
	pluginName string,
) string {
	name := fmt.Sprintf(
		"%s_%s_%s_%s",
		EnvVarPrefix,
		PluginTypeName(pluginType),
		pluginName,
		o.Name,
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// PopulateCmdlineOptions adds a flag for every registered plugin option to the
// provided flag set
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			if err := opt.addFlag(fs, p.Type, p.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o PluginOption) addFlag(
	fs *pflag.FlagSet,
	pluginType PluginType,
	pluginName string,
) error {
	flagName := o.flagName(pluginType, pluginName)
	switch o.Type {
	case PluginOptionTypeString:
		dest, ok := o.Dest.(*string)
		if !ok {
			return fmt.Errorf("option %s: destination is not *string", flagName)
		}
		def, _ := o.DefaultValue.(string)
		fs.StringVar(dest, flagName, def, o.Description)
	case PluginOptionTypeBool:
		dest, ok := o.Dest.(*bool)
		if !ok {
			return fmt.Errorf("option %s: destination is not *bool", flagName)
		}
		def, _ := o.DefaultValue.(bool)
		fs.BoolVar(dest, flagName, def, o.Description)
	case PluginOptionTypeInt:
		dest, ok := o.Dest.(*int)
		if !ok {
			return fmt.Errorf("option %s: destination is not *int", flagName)
		}
		def, _ := o.DefaultValue.(int)
		fs.IntVar(dest, flagName, def, o.Description)
	case PluginOptionTypeUint:
		dest, ok := o.Dest.(*uint64)
		if !ok {
			return fmt.Errorf("option %s: destination is not *uint64", flagName)
		}
		def, _ := o.DefaultValue.(uint64)
		fs.Uint64Var(dest, flagName, def, o.Description)
	default:
		return fmt.Errorf("option %s: unknown option type %d", flagName, o.Type)
	}
	return nil
}

// ProcessConfig applies plugin options loaded from the config file. The map is
// keyed by plugin type name, then plugin name, then option name
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		pluginType, ok := pluginTypeFromName(typeName)
		if !ok {
			return fmt.Errorf("unknown plugin type: %s", typeName)
		}
		for pluginName, options := range plugins {
			for optName, value := range options {
				if err := SetPluginOption(
					pluginType,
					pluginName,
					optName,
					normalizeOptionValue(pluginType, pluginName, optName, value),
				); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// normalizeOptionValue converts YAML scalars to the Go type expected by the
// named option
func normalizeOptionValue(
	pluginType PluginType,
	pluginName string,
	optName string,
	value any,
) any {
	opt := findOption(pluginType, pluginName, optName)
	if opt == nil {
		return value
	}
	switch opt.Type {
	case PluginOptionTypeUint:
		if v, ok := value.(int); ok && v >= 0 {
			return uint64(v)
		}
	case PluginOptionTypeString:
		if v, ok := value.(int); ok {
			return strconv.Itoa(v)
		}
	}
	return value
}

func findOption(
	pluginType PluginType,
	pluginName string,
	optName string,
) *PluginOption {
	for i := range pluginEntries {
		p := &pluginEntries[i]
		if p.Type != pluginType || p.Name != pluginName {
			continue
		}
		for j := range p.Options {
			if p.Options[j].Name == optName {
				return &p.Options[j]
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from environment variables
func ProcessEnvVars() error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envName := opt.envVarName(p.Type, p.Name)
			raw, ok := os.LookupEnv(envName)
			if !ok && opt.CustomEnvVar != "" {
				envName = opt.CustomEnvVar
				raw, ok = os.LookupEnv(envName)
			}
			if !ok {
				continue
			}
			var value any
			switch opt.Type {
			case PluginOptionTypeString:
				value = raw
			case PluginOptionTypeBool:
				v, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("invalid value for %s: %w", envName, err)
				}
				value = v
			case PluginOptionTypeInt:
				v, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("invalid value for %s: %w", envName, err)
				}
				value = v
			case PluginOptionTypeUint:
				v, err := strconv.ParseUint(raw, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid value for %s: %w", envName, err)
				}
				value = v
			}
			if err := SetPluginOption(p.Type, p.Name, opt.Name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
