package conversion

import (
	"bytes"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pepkit/eido/internal/pep"
)

// Filter names.
const (
	Basic       = "basic"
	YAML        = "yaml"
	YAMLSamples = "yaml-samples"
	CSV         = "csv"
	Processed   = "processed"
)

// Output names.
const (
	OutProject    = "project"
	OutSamples    = "samples"
	OutSubsamples = "subsamples"
)

func builtins() []Filter {
	return []Filter{
		{Name: Basic, Description: "Project summary as text. Output: project.", Func: basicFilter},
		{Name: YAML, Description: "Project configuration as YAML. Output: project.", Func: yamlFilter},
		{Name: YAMLSamples, Description: "Samples as a YAML list. Output: samples.", Func: yamlSamplesFilter},
		{Name: CSV, Description: "Sample table followed by any subsample tables as CSV. Output: samples.", Func: csvFilter},
		{
			Name: Processed,
			Description: "Configuration, samples and subsamples after processing. Outputs: project, samples, subsamples. " +
				"Params: samples_as_objects, subsamples_as_objects.",
			Func: processedFilter,
		},
	}
}

func basicFilter(p *pep.Project, _ map[string]string) (map[string]string, error) {
	return map[string]string{OutProject: p.String()}, nil
}

func yamlFilter(p *pep.Project, _ map[string]string) (map[string]string, error) {
	out, err := encodeYAML(p.Config())
	if err != nil {
		return nil, err
	}
	return map[string]string{OutProject: out}, nil
}

func yamlSamplesFilter(p *pep.Project, _ map[string]string) (map[string]string, error) {
	out, err := samplesYAML(p.Samples())
	if err != nil {
		return nil, err
	}
	return map[string]string{OutSamples: out}, nil
}

func csvFilter(p *pep.Project, _ map[string]string) (map[string]string, error) {
	var sb strings.Builder
	samples, err := sampleTable(p).CSV()
	if err != nil {
		return nil, err
	}
	sb.WriteString(samples)
	subsamples, err := subsampleCSV(p)
	if err != nil {
		return nil, err
	}
	sb.WriteString(subsamples)
	return map[string]string{OutSamples: sb.String()}, nil
}

func processedFilter(p *pep.Project, params map[string]string) (map[string]string, error) {
	project, err := encodeYAML(p.Config())
	if err != nil {
		return nil, err
	}

	var samples string
	if flag(params, "samples_as_objects") {
		samples, err = samplesYAML(p.Samples())
	} else {
		samples, err = sampleTable(p).CSV()
	}
	if err != nil {
		return nil, err
	}

	var subsamples string
	if flag(params, "subsamples_as_objects") {
		subsamples, err = subsamplesYAML(p.SubsampleTables())
	} else {
		subsamples, err = subsampleCSV(p)
	}
	if err != nil {
		return nil, err
	}

	return map[string]string{
		OutProject:    project,
		OutSamples:    samples,
		OutSubsamples: subsamples,
	}, nil
}

func flag(params map[string]string, name string) bool {
	v, err := strconv.ParseBool(params[name])
	return err == nil && v
}

// sampleTable returns the table the project was read from, or one built from
// its samples.
func sampleTable(p *pep.Project) *pep.Table {
	if t := p.SampleTable(); t != nil {
		return t
	}
	t := &pep.Table{}
	seen := make(map[string]bool)
	for _, s := range p.Samples() {
		for _, k := range s.Keys() {
			if !seen[k] {
				seen[k] = true
				t.Header = append(t.Header, k)
			}
		}
	}
	for _, s := range p.Samples() {
		row := make([]string, len(t.Header))
		for i, k := range t.Header {
			row[i] = strings.Join(s.Values(k), ",")
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func subsampleCSV(p *pep.Project) (string, error) {
	var sb strings.Builder
	for _, t := range p.SubsampleTables() {
		out, err := t.CSV()
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func subsamplesYAML(tables []*pep.Table) (string, error) {
	var rows []map[string]string
	for _, t := range tables {
		err := t.Records(func(rec map[string]string, _ []string) error {
			rows = append(rows, rec)
			return nil
		})
		if err != nil {
			return "", err
		}
	}
	if len(rows) == 0 {
		return "", nil
	}
	return encodeYAML(rows)
}

// samplesYAML renders samples as a YAML list, keeping attribute order.
func samplesYAML(samples []*pep.Sample) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range samples {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range s.Keys() {
			var v yaml.Node
			if err := v.Encode(s.Attr(k)); err != nil {
				return "", err
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &v)
		}
		seq.Content = append(seq.Content, m)
	}
	return encodeYAML(seq)
}

func encodeYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
