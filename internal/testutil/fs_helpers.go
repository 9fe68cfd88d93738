// Package testutil provides test utilities and helpers for eido tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// ProjectConfig is a minimal project configuration that points at
// SampleTable.
const ProjectConfig = `pep_version: "2.0.0"
name: test_pep
description: frog project used in tests
sample_table: sample_table.csv
`

// SampleTable holds two samples whose files live under data/.
const SampleTable = `sample_name,protocol,genome,file
frog_1,anySampleType,hg38,data/frog1_data.txt
frog_2,anySampleType,hg38,data/frog2_data.txt
`

// SchemaValid accepts ProjectConfig and SampleTable.
const SchemaValid = `description: test PEP schema
properties:
  dcc:
    type: object
    properties:
      compute_packages:
        type: object
  samples:
    type: array
    items:
      type: object
      properties:
        sample_name:
          type: string
        protocol:
          type: string
        genome:
          type: string
        file:
          type: string
      files:
        - file
      required_files:
        - file
      required:
        - sample_name
        - protocol
required:
  - samples
`

// SchemaInvalid requires a sample attribute no fixture sample has.
const SchemaInvalid = `description: test PEP schema
properties:
  samples:
    type: array
    items:
      type: object
      properties:
        sample_name:
          type: string
        protocol:
          type: string
        genome:
          type: string
        missing_attr:
          type: string
      required:
        - sample_name
        - missing_attr
required:
  - samples
`

// ProjectFixture describes the files of a test project.
type ProjectFixture struct {
	Config     string
	Samples    string
	Subsamples map[string]string
	// Extra files, keyed by path relative to the project directory.
	Files map[string]string
}

// DefaultProject returns the two-sample frog project.
func DefaultProject() ProjectFixture {
	return ProjectFixture{Config: ProjectConfig, Samples: SampleTable}
}

// WriteProject writes a fixture into dir and returns the config path.
func WriteProject(t *testing.T, dir string, p ProjectFixture) string {
	t.Helper()

	cfg := filepath.Join(dir, "project_config.yaml")
	WriteFile(t, cfg, p.Config)
	if p.Samples != "" {
		WriteFile(t, filepath.Join(dir, "sample_table.csv"), p.Samples)
	}
	for name, content := range p.Subsamples {
		WriteFile(t, filepath.Join(dir, name), content)
	}
	for name, content := range p.Files {
		WriteFile(t, filepath.Join(dir, name), content)
	}
	return cfg
}

// WriteProjectFs is WriteProject for an afero filesystem.
func WriteProjectFs(t *testing.T, fs afero.Fs, dir string, p ProjectFixture) string {
	t.Helper()

	cfg := filepath.Join(dir, "project_config.yaml")
	WriteFileFs(t, fs, cfg, p.Config)
	if p.Samples != "" {
		WriteFileFs(t, fs, filepath.Join(dir, "sample_table.csv"), p.Samples)
	}
	for name, content := range p.Subsamples {
		WriteFileFs(t, fs, filepath.Join(dir, name), content)
	}
	for name, content := range p.Files {
		WriteFileFs(t, fs, filepath.Join(dir, name), content)
	}
	return cfg
}

// WriteSchema writes a schema document and returns its path.
func WriteSchema(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteFile(t, path, content)
	return path
}

// WriteFile writes content to a file, creating parent directories if needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// WriteFileFs writes content to a file on fs.
func WriteFileFs(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads file content, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}

	return string(content)
}

// ClearEnv unsets every EIDO_ variable for the duration of the test so
// configuration tests see only what they set themselves.
func ClearEnv(t *testing.T) {
	t.Helper()

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "EIDO_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}
