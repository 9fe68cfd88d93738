// Package health_test tests the doctor checks for configuration, default schema and server address.
// Related: internal/health/health.go
// Tags: health, doctor, config, schema

package health

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepkit/eido/internal/testutil"
)

// isolate points HOME at an empty directory and clears EIDO_ variables so
// only the files written by the test are loaded.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	testutil.ClearEnv(t)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunHealthChecks(t *testing.T) {
	tests := map[string]struct {
		config     func(t *testing.T, dir string) string
		wantPassed bool
		wantChecks []string
		wantFailed string
	}{
		"defaults": {
			config:     func(t *testing.T, dir string) string { return filepath.Join(dir, "missing.json") },
			wantPassed: true,
			wantChecks: []string{"Configuration", "Default schema", "Server address"},
		},
		"readable default schema": {
			config: func(t *testing.T, dir string) string {
				s := writeFile(t, dir, "schema.yaml", "description: test\nproperties:\n  samples:\n    type: array\n")
				return writeFile(t, dir, "config.json", `{"default_schema": "`+s+`"}`)
			},
			wantPassed: true,
			wantChecks: []string{"Configuration", "Default schema", "Server address"},
		},
		"unreadable default schema": {
			config: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "config.json", `{"default_schema": "`+filepath.Join(dir, "nope.yaml")+`"}`)
			},
			wantChecks: []string{"Configuration", "Default schema", "Server address"},
			wantFailed: "Default schema",
		},
		"bad server address": {
			config: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "config.json", `{"server_addr": "localhost"}`)
			},
			wantChecks: []string{"Configuration", "Default schema", "Server address"},
			wantFailed: "Server address",
		},
		"invalid configuration stops early": {
			config: func(t *testing.T, dir string) string {
				return writeFile(t, dir, "config.json", `{"max_upload_mb": 0}`)
			},
			wantChecks: []string{"Configuration"},
			wantFailed: "Configuration",
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()

			report := RunHealthChecks(Options{ConfigPath: tc.config(t, dir)})

			var names []string
			for _, c := range report.Checks {
				names = append(names, c.Name)
				if c.Name == tc.wantFailed {
					assert.False(t, c.Passed, c.Message)
				} else {
					assert.True(t, c.Passed, c.Message)
				}
			}
			assert.Equal(t, tc.wantChecks, names)
			assert.Equal(t, tc.wantPassed, report.Passed)
		})
	}
}

func TestCheckServerAddr(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		addr string
		want bool
	}{
		"port only":     {addr: ":8080", want: true},
		"host and port": {addr: "127.0.0.1:0", want: true},
		"missing port":  {addr: "localhost", want: false},
		"named port":    {addr: ":http", want: false},
		"port too big":  {addr: ":70000", want: false},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CheckServerAddr(tc.addr).Passed)
		})
	}
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	report := &HealthReport{
		Checks: []CheckResult{
			{Name: "Configuration", Passed: true, Message: "configuration loaded"},
			{Name: "Server address", Passed: false, Message: "invalid server_addr"},
		},
	}
	assert.Equal(t,
		"✓ Configuration: configuration loaded\n✗ Error: Server address: invalid server_addr\n",
		FormatReport(report))
}
