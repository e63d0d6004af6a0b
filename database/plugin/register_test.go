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
package plugin_test

import (
	"testing"

	"github.com/blinklabs-io/worksync/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct {
	started bool
}

func (m *mockPlugin) Start() error {
	m.started = true
	return nil
}

func (m *mockPlugin) Stop() error { return nil }

func registeredNames(pluginType plugin.PluginType) []string {
	var ret []string
	for _, p := range plugin.GetPlugins(pluginType) {
		ret = append(ret, p.Name)
	}
	return ret
}

func TestRegisterAndLookup(t *testing.T) {
	blobName := "blob-" + t.Name()
	metaName := "meta-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               blobName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
	})
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               metaName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
	})

	assert.Contains(t, registeredNames(plugin.PluginTypeBlob), blobName)
	assert.NotContains(t, registeredNames(plugin.PluginTypeBlob), metaName)
	assert.Contains(t, registeredNames(plugin.PluginTypeMetadata), metaName)

	p := plugin.GetPlugin(plugin.PluginTypeBlob, blobName)
	require.IsType(t, &mockPlugin{}, p)
	// Each lookup builds a fresh instance
	assert.NotSame(t, p, plugin.GetPlugin(plugin.PluginTypeBlob, blobName))
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeMetadata, blobName))

	started, err := plugin.StartPlugin(plugin.PluginTypeBlob, blobName)
	require.NoError(t, err)
	assert.True(t, started.(*mockPlugin).started)
}

func TestPluginTypeName(t *testing.T) {
	assert.Equal(t, "blob", plugin.PluginTypeName(plugin.PluginTypeBlob))
	assert.Equal(t, "metadata", plugin.PluginTypeName(plugin.PluginTypeMetadata))
	assert.Empty(t, plugin.PluginTypeName(plugin.PluginType(99)))
}
