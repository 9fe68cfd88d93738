// Package pep implements the Portable Encapsulated Project model: a YAML
// configuration plus a sample table and optional subsample tables.
package pep

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pepkit/eido/internal/yamlvalue"
)

// Config keys understood by the loader.
const (
	KeyPEPVersion      = "pep_version"
	KeyName            = "name"
	KeyDescription     = "description"
	KeySampleTable     = "sample_table"
	KeySubsampleTable  = "subsample_table"
	KeySampleModifiers = "sample_modifiers"

	// DefaultSampleTableIndex names the column that identifies samples.
	DefaultSampleTableIndex = "sample_name"
	// DefaultSubsampleTableIndex names the column that identifies subsamples.
	DefaultSubsampleTableIndex = "subsample_name"
)

// Keys of the internal sections in the project mapping.
const (
	ConfigSection  = "_config"
	SamplesSection = "_samples"
)

// ErrSampleNotFound is returned when no sample has the requested name.
var ErrSampleNotFound = errors.New("sample not found")

// ErrSampleIndex is matched by every IndexError.
var ErrSampleIndex = errors.New("sample index out of range")

// IndexError reports a sample position outside the project.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("sample index %d out of range: project has %d samples", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrSampleIndex }

// SampleRef selects a sample by position or by name.
type SampleRef struct {
	index   int
	name    string
	byIndex bool
}

// ByIndex selects the i-th sample.
func ByIndex(i int) SampleRef { return SampleRef{index: i, byIndex: true} }

// ByName selects the sample with the given name.
func ByName(name string) SampleRef { return SampleRef{name: name} }

// ParseSampleRef treats integer strings as positions and anything else as a
// name.
func ParseSampleRef(s string) SampleRef {
	if i, err := strconv.Atoi(s); err == nil {
		return ByIndex(i)
	}
	return ByName(s)
}

func (r SampleRef) String() string {
	if r.byIndex {
		return strconv.Itoa(r.index)
	}
	return r.name
}

// Project is a loaded PEP.
type Project struct {
	path        string
	config      map[string]any
	samples     []*Sample
	sampleTable *Table
	subsamples  []*Table
	index       string
}

// New builds a project from a configuration mapping and samples.
func New(config map[string]any, samples ...*Sample) *Project {
	if config == nil {
		config = map[string]any{}
	}
	return &Project{config: config, samples: samples, index: DefaultSampleTableIndex}
}

// Path is the configuration file the project was loaded from, if any.
func (p *Project) Path() string { return p.path }

// Name returns the project name from the configuration.
func (p *Project) Name() string {
	name, _ := p.config[KeyName].(string)
	return name
}

// Config returns a copy of the configuration mapping.
func (p *Project) Config() map[string]any {
	return yamlvalue.CloneMap(p.config)
}

// SampleTableIndex is the attribute that names samples.
func (p *Project) SampleTableIndex() string { return p.index }

// SampleTable returns the raw sample table, or nil for in-memory projects.
func (p *Project) SampleTable() *Table { return p.sampleTable }

// SubsampleTables returns the raw subsample tables.
func (p *Project) SubsampleTables() []*Table { return p.subsamples }

// Samples returns the samples in table order.
func (p *Project) Samples() []*Sample {
	return append([]*Sample(nil), p.samples...)
}

// Sample returns the i-th sample.
func (p *Project) Sample(i int) (*Sample, error) {
	if i < 0 || i >= len(p.samples) {
		return nil, &IndexError{Index: i, Len: len(p.samples)}
	}
	return p.samples[i], nil
}

// GetSample returns the sample with the given name.
func (p *Project) GetSample(name string) (*Sample, error) {
	for _, s := range p.samples {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSampleNotFound, name)
}

// GetSamples returns the samples whose names are listed, in project order.
func (p *Project) GetSamples(names []string) []*Sample {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []*Sample
	for _, s := range p.samples {
		if wanted[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}

// ResolveSample looks a sample up by position or name.
func (p *Project) ResolveSample(ref SampleRef) (*Sample, error) {
	if ref.byIndex {
		return p.Sample(ref.index)
	}
	return p.GetSample(ref.name)
}

// ToMap returns the plain mapping form of the project: the configuration keys
// at the top level, the configuration again under _config, and the sample
// mappings under _samples.
func (p *Project) ToMap() map[string]any {
	out := yamlvalue.CloneMap(p.config)
	out[ConfigSection] = yamlvalue.CloneMap(p.config)
	samples := make([]any, len(p.samples))
	for i, s := range p.samples {
		samples[i] = s.ToMap()
	}
	out[SamplesSection] = samples
	return out
}

// String summarizes the project.
func (p *Project) String() string {
	const shown = 20

	var sb strings.Builder
	sb.WriteString("Project")
	if name := p.Name(); name != "" {
		fmt.Fprintf(&sb, " '%s'", name)
	}
	if p.path != "" {
		fmt.Fprintf(&sb, " (%s)", p.path)
	}
	names := make([]string, 0, shown)
	for i, s := range p.samples {
		if i == shown {
			break
		}
		names = append(names, s.Name())
	}
	fmt.Fprintf(&sb, "\n%d samples", len(p.samples))
	if len(p.samples) > shown {
		fmt.Fprintf(&sb, " (showing first %d)", shown)
	}
	if len(names) > 0 {
		fmt.Fprintf(&sb, ": %s", strings.Join(names, ", "))
	}
	sections := make([]string, 0, len(p.config))
	for k := range p.config {
		sections = append(sections, k)
	}
	sort.Strings(sections)
	if len(sections) > 0 {
		fmt.Fprintf(&sb, "\nSections: %s", strings.Join(sections, ", "))
	}
	return sb.String()
}
