// Package config_test tests configuration loading, merging hierarchy, and environment variable overrides.
// Related: internal/config/config.go
// Tags: config, loading, merging, env-vars, json, precedence
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepkit/eido/internal/testutil"
)

// isolate points HOME at an empty directory and clears EIDO_ variables.
// Tests using it cannot run in parallel.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	testutil.ClearEnv(t)
	return home
}

func writeJSON(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.ExcludeCase)
	assert.Equal(t, "sample_name", cfg.SampleTableIndex)
	assert.Empty(t, cfg.DefaultSchema)
	assert.True(t, cfg.ShowProgress)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 32, cfg.MaxUploadMB)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	writeJSON(t, filepath.Join(home, ".eido", "config.json"), `{
		"server_addr": ":9000",
		"sample_table_index": "id",
		"max_upload_mb": 8
	}`)
	local := writeJSON(t, filepath.Join(t.TempDir(), "config.json"), `{
		"sample_table_index": "sample_id",
		"exclude_case": true
	}`)
	t.Setenv("EIDO_MAX_UPLOAD_MB", "64")
	t.Setenv("EIDO_LOG_LEVEL", "DEBUG")

	cfg, err := Load(local)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddr, "global overrides defaults")
	assert.Equal(t, "sample_id", cfg.SampleTableIndex, "local overrides global")
	assert.True(t, cfg.ExcludeCase)
	assert.Equal(t, 64, cfg.MaxUploadMB, "env overrides files")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingLocalIsIgnored(t *testing.T) {
	isolate(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]struct {
		content string
		env     map[string]string
		wantErr string
	}{
		"upload limit too high": {
			content: `{"max_upload_mb": 4096}`,
			wantErr: "validation failed",
		},
		"unknown log level": {
			content: `{"log_level": "loud"}`,
			wantErr: "validation failed",
		},
		"empty index": {
			content: `{"sample_table_index": ""}`,
			wantErr: "validation failed",
		},
		"env upload limit zero": {
			content: `{}`,
			env:     map[string]string{"EIDO_MAX_UPLOAD_MB": "0"},
			wantErr: "validation failed",
		},
		"negative fetch retries": {
			content: `{"fetch_retries": -1}`,
			wantErr: "validation failed",
		},
		"malformed json": {
			content: `{"server_addr": `,
			wantErr: "failed to load local config",
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := writeJSON(t, filepath.Join(t.TempDir(), "config.json"), tc.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_DefaultSchemaHomeExpansion(t *testing.T) {
	home := isolate(t)
	t.Setenv("EIDO_DEFAULT_SCHEMA", "~/schemas/pep.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "schemas", "pep.yaml"), cfg.DefaultSchema)
}

func TestExpandHomePath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		contains string
	}{
		"tilde prefix":  {input: "~/.eido/schema.yaml", contains: ".eido/schema.yaml"},
		"absolute path": {input: "/absolute/path", contains: "/absolute/path"},
		"url untouched": {input: "http://schema.databio.org/pep/2.0.0.yaml", contains: "http://schema.databio.org"},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, expandHomePath(tc.input), tc.contains)
		})
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "max_upload_mb", envTransform("EIDO_MAX_UPLOAD_MB"))
	assert.Equal(t, "exclude_case", envTransform("EIDO_EXCLUDE_CASE"))
}
