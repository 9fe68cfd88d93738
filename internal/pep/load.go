package pep

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/pepkit/eido/internal/yamlvalue"
)

type loadOptions struct {
	fs             afero.Fs
	index          string
	subsampleIndex string
}

// Option configures project loading.
type Option func(*loadOptions)

// WithSampleTableIndex sets the column that names samples.
func WithSampleTableIndex(name string) Option {
	return func(o *loadOptions) {
		if name != "" {
			o.index = name
		}
	}
}

// WithSubsampleTableIndex sets the column that names subsamples.
func WithSubsampleTableIndex(name string) Option {
	return func(o *loadOptions) {
		if name != "" {
			o.subsampleIndex = name
		}
	}
}

// WithFs reads the configuration and tables from fs.
func WithFs(fs afero.Fs) Option {
	return func(o *loadOptions) { o.fs = fs }
}

func newLoadOptions(opts []Option) *loadOptions {
	o := &loadOptions{
		fs:             afero.NewOsFs(),
		index:          DefaultSampleTableIndex,
		subsampleIndex: DefaultSubsampleTableIndex,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load reads a project configuration and the tables it references. Table
// paths are resolved relative to the configuration file.
func Load(path string, opts ...Option) (*Project, error) {
	o := newLoadOptions(opts)

	data, err := afero.ReadFile(o.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}
	config, err := parseConfig(data, path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	var sampleTable io.Reader
	if rel, ok := config[KeySampleTable].(string); ok && rel != "" {
		f, err := o.fs.Open(resolvePath(dir, rel))
		if err != nil {
			return nil, fmt.Errorf("opening sample table: %w", err)
		}
		defer f.Close()
		sampleTable = f
	}

	var subsampleTables []io.Reader
	for _, rel := range stringList(config[KeySubsampleTable]) {
		f, err := o.fs.Open(resolvePath(dir, rel))
		if err != nil {
			return nil, fmt.Errorf("opening subsample table: %w", err)
		}
		defer f.Close()
		subsampleTables = append(subsampleTables, f)
	}

	p, err := build(config, sampleTable, subsampleTables, o)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", path, err)
	}
	p.path = path
	return p, nil
}

// FromReaders builds a project from an in-memory configuration and tables.
// The sample_table and subsample_table config keys are ignored; the readers
// take their place. sampleTable may be nil.
func FromReaders(config io.Reader, sampleTable io.Reader, subsampleTables []io.Reader, opts ...Option) (*Project, error) {
	o := newLoadOptions(opts)

	data, err := io.ReadAll(config)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}
	cfg, err := parseConfig(data, "<upload>")
	if err != nil {
		return nil, err
	}
	return build(cfg, sampleTable, subsampleTables, o)
}

func parseConfig(data []byte, name string) (map[string]any, error) {
	var raw any
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing project config %s: %w", name, err)
		}
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	config, ok := yamlvalue.Normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parsing project config %s: top level is %T, not a mapping", name, raw)
	}
	return config, nil
}

func build(config map[string]any, sampleTable io.Reader, subsampleTables []io.Reader, o *loadOptions) (*Project, error) {
	mods, err := parseModifiers(config)
	if err != nil {
		return nil, err
	}

	p := &Project{config: config, index: o.index}
	if sampleTable != nil {
		t, err := ReadTable(sampleTable)
		if err != nil {
			return nil, fmt.Errorf("sample table: %w", err)
		}
		p.sampleTable = t
		if p.samples, err = samplesFromTable(t, o.index); err != nil {
			return nil, err
		}
	}

	for _, s := range p.samples {
		mods.beforeMerge(s)
	}

	for i, r := range subsampleTables {
		t, err := ReadTable(r)
		if err != nil {
			return nil, fmt.Errorf("subsample table %d: %w", i, err)
		}
		p.subsamples = append(p.subsamples, t)
		if err := mergeSubsamples(p, t, o.subsampleIndex); err != nil {
			return nil, fmt.Errorf("subsample table %d: %w", i, err)
		}
	}

	for _, s := range p.samples {
		mods.afterMerge(s)
	}
	return p, nil
}

// samplesFromTable creates one sample per distinct index value. Rows sharing
// an index value are merged into multi-valued attributes.
func samplesFromTable(t *Table, index string) ([]*Sample, error) {
	if t.Column(index) < 0 {
		return nil, fmt.Errorf("sample table index %q not found in columns %v", index, t.Header)
	}
	var samples []*Sample
	byName := make(map[string]*Sample)
	err := t.Records(func(rec map[string]string, order []string) error {
		name, ok := rec[index]
		if !ok {
			return fmt.Errorf("sample table row without %q value", index)
		}
		s, seen := byName[name]
		if !seen {
			s = NewSample(index)
			byName[name] = s
			samples = append(samples, s)
			for _, k := range order {
				s.Set(k, rec[k])
			}
			return nil
		}
		for _, k := range order {
			if k != index {
				s.merge(k, rec[k])
			}
		}
		return nil
	})
	return samples, err
}

// mergeSubsamples replaces sample attributes with the values collected from
// the subsample rows that name the sample. A single row gives a scalar,
// several rows a list. Rows naming unknown samples are ignored.
func mergeSubsamples(p *Project, t *Table, subsampleIndex string) error {
	if t.Column(p.index) < 0 {
		return fmt.Errorf("subsample table index %q not found in columns %v", p.index, t.Header)
	}
	byName := make(map[string]*Sample, len(p.samples))
	for _, s := range p.samples {
		byName[s.Name()] = s
	}

	type collected struct {
		order  []string
		values map[string][]string
	}
	acc := make(map[*Sample]*collected)
	var seen []*Sample

	err := t.Records(func(rec map[string]string, order []string) error {
		s, ok := byName[rec[p.index]]
		if !ok {
			return nil
		}
		c, ok := acc[s]
		if !ok {
			c = &collected{values: make(map[string][]string)}
			acc[s] = c
			seen = append(seen, s)
		}
		for _, k := range order {
			if k == p.index || k == subsampleIndex {
				continue
			}
			if _, ok := c.values[k]; !ok {
				c.order = append(c.order, k)
			}
			c.values[k] = append(c.values[k], rec[k])
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, s := range seen {
		c := acc[s]
		for _, k := range c.order {
			if vals := c.values[k]; len(vals) == 1 {
				s.Set(k, vals[0])
			} else {
				s.Set(k, vals)
			}
		}
	}
	return nil
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
