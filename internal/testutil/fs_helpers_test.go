// Package testutil_test tests filesystem helper utilities for test fixture creation.
// Related: internal/testutil/fs_helpers.go
// Tags: testutil, helpers, fixtures, filesystem

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProject(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fixture   ProjectFixture
		wantFiles []string
	}{
		"default project": {
			fixture:   DefaultProject(),
			wantFiles: []string{"project_config.yaml", "sample_table.csv"},
		},
		"with subsamples and data": {
			fixture: ProjectFixture{
				Config:     ProjectConfig,
				Samples:    SampleTable,
				Subsamples: map[string]string{"subsample_table.csv": "sample_name,file\n"},
				Files:      map[string]string{"data/frog1_data.txt": "ribbit"},
			},
			wantFiles: []string{"project_config.yaml", "sample_table.csv", "subsample_table.csv", "data/frog1_data.txt"},
		},
		"config only": {
			fixture:   ProjectFixture{Config: "name: bare\n"},
			wantFiles: []string{"project_config.yaml"},
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()

			cfg := WriteProject(t, dir, tc.fixture)

			assert.Equal(t, filepath.Join(dir, "project_config.yaml"), cfg)
			for _, f := range tc.wantFiles {
				assert.True(t, FileExists(filepath.Join(dir, f)), "missing %s", f)
			}
		})
	}
}

func TestWriteProjectFs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg := WriteProjectFs(t, fs, "/pep", DefaultProject())

	data, err := afero.ReadFile(fs, cfg)
	require.NoError(t, err)
	assert.Equal(t, ProjectConfig, string(data))

	ok, err := afero.Exists(fs, "/pep/sample_table.csv")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir", "file.txt")

	WriteFile(t, path, "test content")

	assert.Equal(t, "test content", ReadFile(t, path))
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "exists.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))

	assert.True(t, FileExists(existing))
	assert.False(t, FileExists(filepath.Join(tmpDir, "missing.txt")))
}

func TestClearEnv(t *testing.T) {
	t.Setenv("EIDO_LOG_LEVEL", "debug")

	ClearEnv(t)

	_, ok := os.LookupEnv("EIDO_LOG_LEVEL")
	assert.False(t, ok)
}
