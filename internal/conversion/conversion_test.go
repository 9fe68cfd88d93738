// Package conversion_test tests the filter registry and built-in filters.
// Related: internal/conversion/registry.go, internal/conversion/filters.go, internal/conversion/save.go
// Tags: conversion, filters, registry, yaml, csv

package conversion

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pepkit/eido/internal/pep"
	"github.com/pepkit/eido/internal/testutil"
)

func loadProject(t *testing.T, fixture testutil.ProjectFixture) *pep.Project {
	t.Helper()
	fs := afero.NewMemMapFs()
	cfg := testutil.WriteProjectFs(t, fs, "/pep", fixture)
	p, err := pep.Load(cfg, pep.WithFs(fs))
	require.NoError(t, err)
	return p
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	assert.Equal(t, []string{"basic", "csv", "processed", "yaml", "yaml-samples"}, r.Names())
	for _, f := range r.Filters() {
		assert.NotEmpty(t, f.Description, f.Name)
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	noop := func(*pep.Project, map[string]string) (map[string]string, error) { return nil, nil }

	tests := map[string]struct {
		filter  Filter
		wantErr string
	}{
		"new filter":     {filter: Filter{Name: "custom", Func: noop}},
		"duplicate name": {filter: Filter{Name: Basic, Func: noop}, wantErr: "already registered"},
		"missing name":   {filter: Filter{Func: noop}, wantErr: "needs a name"},
		"missing func":   {filter: Filter{Name: "x"}, wantErr: "needs a name"},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := DefaultRegistry().Register(tc.filter)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRunUnknownFilter(t *testing.T) {
	t.Parallel()

	_, err := Run(DefaultRegistry(), pep.New(nil), "xml", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFilterNotFound))
	var ferr *FilterError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "xml", ferr.Name)
	assert.Equal(t, "requested filter (xml) not found. Available: basic, csv, processed, yaml, yaml-samples", err.Error())
}

func TestRunFilterFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := NewRegistry()
	require.NoError(t, r.Register(Filter{
		Name: "broken",
		Func: func(*pep.Project, map[string]string) (map[string]string, error) { return nil, boom },
	}))

	_, err := Run(r, pep.New(nil), "broken", nil)

	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrFilterNotFound))
}

func TestBuiltinFilters(t *testing.T) {
	t.Parallel()

	fixture := testutil.ProjectFixture{
		Config:  "name: frogs\nsample_table: sample_table.csv\nsubsample_table: subsample_table.csv\n",
		Samples: "sample_name,protocol,file\nfrog_1,RNA,x.fq\nfrog_2,DNA,y.fq\n",
		Subsamples: map[string]string{
			"subsample_table.csv": "sample_name,file\nfrog_1,a.fq\nfrog_1,b.fq\n",
		},
	}
	p := loadProject(t, fixture)

	tests := map[string]struct {
		filter  string
		params  map[string]string
		want    map[string][]string
		exactly map[string]string
	}{
		"basic": {
			filter: Basic,
			want:   map[string][]string{OutProject: {"Project 'frogs'", "2 samples: frog_1, frog_2"}},
		},
		"yaml": {
			filter: YAML,
			want:   map[string][]string{OutProject: {"name: frogs", "sample_table: sample_table.csv"}},
		},
		"yaml-samples": {
			filter: YAMLSamples,
			want:   map[string][]string{OutSamples: {"- sample_name: frog_1\n  protocol: RNA\n  file:"}},
		},
		"csv": {
			filter: CSV,
			exactly: map[string]string{
				OutSamples: "sample_name,protocol,file\nfrog_1,RNA,x.fq\nfrog_2,DNA,y.fq\nsample_name,file\nfrog_1,a.fq\nfrog_1,b.fq\n",
			},
		},
		"processed as tables": {
			filter: Processed,
			want: map[string][]string{
				OutProject:    {"name: frogs"},
				OutSamples:    {"sample_name,protocol,file"},
				OutSubsamples: {"frog_1,a.fq"},
			},
		},
		"processed as objects": {
			filter: Processed,
			params: map[string]string{"samples_as_objects": "true", "subsamples_as_objects": "yes"},
			want: map[string][]string{
				OutSamples:    {"- sample_name: frog_1"},
				OutSubsamples: {"frog_1,a.fq"},
			},
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Run(DefaultRegistry(), p, tc.filter, tc.params)
			require.NoError(t, err)

			for out, parts := range tc.want {
				for _, part := range parts {
					assert.Contains(t, got[out], part, "output %s", out)
				}
			}
			for out, text := range tc.exactly {
				assert.Equal(t, text, got[out], "output %s", out)
			}
		})
	}
}

func TestYAMLSamplesStructure(t *testing.T) {
	t.Parallel()

	p := loadProject(t, testutil.ProjectFixture{
		Config:     "sample_table: sample_table.csv\nsubsample_table: sub.csv\n",
		Samples:    "sample_name,protocol,file\nfrog_1,RNA,x.fq\nfrog_2,DNA,y.fq\n",
		Subsamples: map[string]string{"sub.csv": "sample_name,file\nfrog_1,a.fq\nfrog_1,b.fq\n"},
	})

	got, err := Run(DefaultRegistry(), p, YAMLSamples, nil)
	require.NoError(t, err)

	var samples []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(got[OutSamples]), &samples))
	assert.Equal(t, []map[string]any{
		{"sample_name": "frog_1", "protocol": "RNA", "file": []any{"a.fq", "b.fq"}},
		{"sample_name": "frog_2", "protocol": "DNA", "file": "y.fq"},
	}, samples)
}

func TestProcessedSubsamplesAsObjects(t *testing.T) {
	t.Parallel()

	p := loadProject(t, testutil.ProjectFixture{
		Config:     "sample_table: sample_table.csv\nsubsample_table: sub.csv\n",
		Samples:    "sample_name,file\nfrog_1,x\n",
		Subsamples: map[string]string{"sub.csv": "sample_name,file\nfrog_1,a.fq\n"},
	})

	got, err := Run(DefaultRegistry(), p, Processed, map[string]string{"subsamples_as_objects": "true"})
	require.NoError(t, err)
	assert.Equal(t, "- file: a.fq\n  sample_name: frog_1\n", got[OutSubsamples])
}

func TestCSVWithoutSampleTable(t *testing.T) {
	t.Parallel()

	a := pep.NewSample(pep.DefaultSampleTableIndex)
	a.Set("sample_name", "frog_1")
	a.Set("file", []string{"a.fq", "b.fq"})
	b := pep.NewSample(pep.DefaultSampleTableIndex)
	b.Set("sample_name", "frog_2")
	b.Set("genome", "hg38")

	got, err := Run(DefaultRegistry(), pep.New(nil, a, b), CSV, nil)
	require.NoError(t, err)
	assert.Equal(t, "sample_name,file,genome\nfrog_1,\"a.fq,b.fq\",\nfrog_2,,hg38\n", got[OutSamples])
}

func TestSaveFs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	var stdout bytes.Buffer
	results := map[string]string{
		OutProject: "project text\n",
		OutSamples: "samples text\n",
	}

	err := SaveFs(fs, results, map[string]string{OutSamples: "/out/samples.csv"}, &stdout)
	require.NoError(t, err)

	assert.Equal(t, "project text\n", stdout.String())
	data, err := afero.ReadFile(fs, "/out/samples.csv")
	require.NoError(t, err)
	assert.Equal(t, "samples text\n", string(data))
}

func TestSaveOrdersStdout(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	results := map[string]string{"b": "2", "a": "1", "c": "3"}

	require.NoError(t, SaveFs(afero.NewMemMapFs(), results, nil, &stdout))
	assert.Equal(t, "123", stdout.String())
	assert.False(t, strings.Contains(stdout.String(), "\n"))
}
