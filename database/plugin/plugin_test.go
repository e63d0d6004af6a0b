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
	_ "github.com/blinklabs-io/worksync/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/worksync/database/plugin/metadata/sqlite"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests mutate global plugin option state and must not run in parallel

func TestSetPluginOption(t *testing.T) {
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "data-dir", ""),
	)
	// Wrong value type
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "data-dir", 123),
	)
	// Unknown options are ignored
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "does-not-exist", "x"),
	)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "block-cache-size", uint64(100000000)),
	)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "block-cache-size", 1000),
	)
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "block-cache-size", -1),
	)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, "badger", "gc", true),
	)
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "nonexistent", "data-dir", "x"),
	)
}

func TestStartPluginInMemory(t *testing.T) {
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeMetadata, "sqlite", "data-dir", ""),
	)
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, "sqlite")
	require.NoError(t, err)
	require.NoError(t, p.Stop())

	_, err = plugin.StartPlugin(plugin.PluginTypeMetadata, "nonexistent")
	require.ErrorContains(t, err, "not found")
}

func TestProcessConfig(t *testing.T) {
	dir := t.TempDir()
	err := plugin.ProcessConfig(map[string]map[string]map[string]any{
		"blob": {
			"badger": {
				"data-dir":         dir,
				"block-cache-size": 1024,
				"gc":               false,
			},
		},
	})
	require.NoError(t, err)
	err = plugin.ProcessConfig(map[string]map[string]map[string]any{
		"cache": {"badger": {}},
	})
	require.ErrorContains(t, err, "unknown plugin type")
}

func TestProcessEnvVars(t *testing.T) {
	t.Setenv("WORKSYNC_DATABASE_BLOB_BADGER_GC", "not-a-bool")
	require.Error(t, plugin.ProcessEnvVars())
	t.Setenv("WORKSYNC_DATABASE_BLOB_BADGER_GC", "false")
	t.Setenv("WORKSYNC_DATABASE_BLOB_BADGER_INDEX_CACHE_SIZE", "4096")
	require.NoError(t, plugin.ProcessEnvVars())
}

func TestPopulateCmdlineOptions(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))
	f := fs.Lookup("blob-badger-data-dir")
	require.NotNil(t, f)
	assert.Equal(t, ".worksync", f.DefValue)
	assert.NotNil(t, fs.Lookup("metadata-sqlite-data-dir"))
	require.NoError(t, fs.Parse([]string{"--blob-badger-gc=false"}))
}
