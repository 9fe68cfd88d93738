// Package pep_test tests the project and sample model.
// Related: internal/pep/project.go, internal/pep/sample.go
// Tags: pep, project, samples

package pep

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSample(attrs ...string) *Sample {
	s := NewSample(DefaultSampleTableIndex)
	for i := 0; i+1 < len(attrs); i += 2 {
		s.Set(attrs[i], attrs[i+1])
	}
	return s
}

func frogProject() *Project {
	return New(
		map[string]any{"name": "frogs", "pep_version": "2.0.0"},
		newSample("sample_name", "frog_1", "protocol", "RNA"),
		newSample("sample_name", "frog_2", "protocol", "DNA"),
	)
}

func TestResolveSample(t *testing.T) {
	t.Parallel()

	p := frogProject()

	tests := map[string]struct {
		ref      SampleRef
		wantName string
		wantErr  error
	}{
		"by index":         {ref: ByIndex(1), wantName: "frog_2"},
		"by name":          {ref: ByName("frog_1"), wantName: "frog_1"},
		"parsed integer":   {ref: ParseSampleRef("0"), wantName: "frog_1"},
		"parsed name":      {ref: ParseSampleRef("frog_2"), wantName: "frog_2"},
		"index too large":  {ref: ByIndex(2), wantErr: ErrSampleIndex},
		"negative index":   {ref: ByIndex(-1), wantErr: ErrSampleIndex},
		"unknown name":     {ref: ByName("toad"), wantErr: ErrSampleNotFound},
		"empty name fails": {ref: ByName(""), wantErr: ErrSampleNotFound},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, err := p.ResolveSample(tc.ref)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, s.Name())
		})
	}
}

func TestIndexError(t *testing.T) {
	t.Parallel()

	_, err := frogProject().Sample(5)

	var idx *IndexError
	require.True(t, errors.As(err, &idx))
	assert.Equal(t, 5, idx.Index)
	assert.Equal(t, 2, idx.Len)
	assert.Equal(t, "sample index 5 out of range: project has 2 samples", err.Error())
}

func TestSampleRefString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3", ByIndex(3).String())
	assert.Equal(t, "frog", ByName("frog").String())
}

func TestGetSamples(t *testing.T) {
	t.Parallel()

	got := frogProject().GetSamples([]string{"frog_2", "toad", "frog_1"})

	require.Len(t, got, 2)
	assert.Equal(t, "frog_1", got[0].Name())
	assert.Equal(t, "frog_2", got[1].Name())
}

func TestProjectToMap(t *testing.T) {
	t.Parallel()

	p := frogProject()
	m := p.ToMap()

	assert.Equal(t, "frogs", m["name"])
	assert.Equal(t, map[string]any{"name": "frogs", "pep_version": "2.0.0"}, m[ConfigSection])
	samples, ok := m[SamplesSection].([]any)
	require.True(t, ok)
	require.Len(t, samples, 2)
	assert.Equal(t, map[string]any{"sample_name": "frog_1", "protocol": "RNA"}, samples[0])

	// mutating the mapping leaves the project alone
	m[ConfigSection].(map[string]any)["name"] = "toads"
	samples[0].(map[string]any)["protocol"] = "changed"
	assert.Equal(t, "frogs", p.Name())
	s, _ := p.Sample(0)
	assert.Equal(t, "RNA", s.Attr("protocol"))
}

func TestProjectString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		project *Project
		want    []string
		notWant []string
	}{
		"named project": {
			project: frogProject(),
			want:    []string{"Project 'frogs'", "2 samples: frog_1, frog_2", "Sections: name, pep_version"},
			notWant: []string{"showing first"},
		},
		"many samples are truncated": {
			project: func() *Project {
				var samples []*Sample
				for i := 0; i < 25; i++ {
					samples = append(samples, newSample("sample_name", fmt.Sprintf("s%d", i)))
				}
				return New(nil, samples...)
			}(),
			want:    []string{"25 samples (showing first 20)", "s19"},
			notWant: []string{"s20", "Sections"},
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.project.String()
			for _, w := range tc.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tc.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestSampleAttributes(t *testing.T) {
	t.Parallel()

	s := newSample("sample_name", "frog_1", "protocol", "RNA", "genome", "hg38")
	s.Delete("protocol")
	s.Delete("absent")
	s.Set("genome", "mm10")
	s.merge("file", "a.fq")
	s.merge("file", "b.fq")

	assert.Equal(t, []string{"sample_name", "genome", "file"}, s.Keys())
	assert.False(t, s.Has("protocol"))
	assert.Nil(t, s.Attr("protocol"))
	assert.Equal(t, "mm10", s.Attr("genome"))
	assert.Equal(t, []string{"a.fq", "b.fq"}, s.Values("file"))
	assert.Equal(t, []string{"mm10"}, s.Values("genome"))
	assert.Nil(t, s.Values("protocol"))
}

func TestSampleString(t *testing.T) {
	t.Parallel()

	s := newSample("sample_name", "frog_1", "protocol", "RNA", "genome", "hg38")
	s.Set("file", []string{"a", "b"})

	tests := map[string]struct {
		maxAttr int
		want    string
	}{
		"all attributes": {
			maxAttr: 0,
			want:    "Sample 'frog_1'\n  sample_name: frog_1\n  protocol: RNA\n  genome: hg38\n  file: [a, b]",
		},
		"truncated": {
			maxAttr: 2,
			want:    "Sample 'frog_1'\n  sample_name: frog_1\n  protocol: RNA\n  ...(2 more attributes)",
		},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, s.String(tc.maxAttr))
		})
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   any
		want []string
	}{
		"nil":                {in: nil, want: nil},
		"empty string":       {in: "", want: nil},
		"scalar":             {in: "a.fq", want: []string{"a.fq"}},
		"string list":        {in: []string{"a", "", "b"}, want: []string{"a", "b"}},
		"any list":           {in: []any{"a", nil, 3}, want: []string{"a", "3"}},
		"number becomes str": {in: 5, want: []string{"5"}},
	}

	for name, tc := range tests {

		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Flatten(tc.in))
		})
	}
}

func TestTableCSV(t *testing.T) {
	t.Parallel()

	tbl, err := ReadTable(strings.NewReader("\ufeffsample_name, protocol\nfrog_1,RNA\n\n,\nfrog_2\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"sample_name", "protocol"}, tbl.Header)
	assert.Len(t, tbl.Rows, 2)
	assert.Equal(t, 1, tbl.Column("protocol"))
	assert.Equal(t, -1, tbl.Column("genome"))

	out, err := tbl.CSV()
	require.NoError(t, err)
	assert.Equal(t, "sample_name,protocol\nfrog_1,RNA\nfrog_2,\n", out)
}

func TestReadTableEmpty(t *testing.T) {
	t.Parallel()

	_, err := ReadTable(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table is empty")
}
