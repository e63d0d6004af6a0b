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

import "fmt"

type Plugin interface {
	Start() error
	Stop() error
}

// ErrorPlugin is a plugin that always returns an error on Start()
type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error {
	return e.Err
}

func (e *ErrorPlugin) Stop() error {
	return nil
}

// NewErrorPlugin returns a plugin which defers a construction error to Start()
func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

// StartPlugin builds the named plugin from the registry and starts it
func StartPlugin(pluginType PluginType, pluginName string) (Plugin, error) {
	p := GetPlugin(pluginType, pluginName)
	if p == nil {
		return nil, fmt.Errorf(
			"%s plugin '%s' not found",
			PluginTypeName(pluginType),
			pluginName,
		)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	return p, nil
}

func assignOption[T any](optionName string, dest any, value T) error {
	if dest == nil {
		return fmt.Errorf("nil destination for option %s", optionName)
	}
	ptr, ok := dest.(*T)
	if !ok || ptr == nil {
		return fmt.Errorf(
			"invalid destination type for option %s: expected *%T",
			optionName,
			value,
		)
	}
	*ptr = value
	return nil
}

// SetPluginOption sets a named option for a registered plugin. Unknown
// options are ignored so that callers can apply a common option, such as
// data-dir, across implementations that may not support it.
//
// This writes to the option destinations without locking and must only be
// called before plugins are instantiated.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	found := false
	for i := range pluginEntries {
		p := &pluginEntries[i]
		if p.Type == pluginType && p.Name == pluginName {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf(
			"plugin %s of type %s not found",
			pluginName,
			PluginTypeName(pluginType),
		)
	}
	opt := findOption(pluginType, pluginName, optionName)
	if opt == nil {
		return nil
	}
	switch opt.Type {
	case PluginOptionTypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected string", optionName)
		}
		return assignOption(optionName, opt.Dest, v)
	case PluginOptionTypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected bool", optionName)
		}
		return assignOption(optionName, opt.Dest, v)
	case PluginOptionTypeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected int", optionName)
		}
		return assignOption(optionName, opt.Dest, v)
	case PluginOptionTypeUint:
		switch tv := value.(type) {
		case uint64:
			return assignOption(optionName, opt.Dest, tv)
		case int:
			if tv < 0 {
				return fmt.Errorf("invalid value for option %s: negative int", optionName)
			}
			return assignOption(optionName, opt.Dest, uint64(tv))
		default:
			return fmt.Errorf("invalid type for option %s: expected uint64 or int", optionName)
		}
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			opt.Type,
			optionName,
		)
	}
}
