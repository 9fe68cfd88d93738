package validation

import (
	"errors"
	"io/fs"
	"slices"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pepkit/eido/internal/pep"
	"github.com/pepkit/eido/internal/schema"
)

const gibibyte = 1 << 30

// InputReport is the inventory of the input files a sample declares.
type InputReport struct {
	Missing        []string `json:"missing"`
	RequiredInputs []string `json:"required_inputs"`
	AllInputs      []string `json:"all_inputs"`
	InputFileSize  float64  `json:"input_file_size"` // GiB
}

// ValidateInputs validates s against the sample item schema of every document
// src expands to, then collects the paths named by the files and
// required_files keywords of the last document. Required paths that do not
// exist are reported as missing. Paths that cannot be sized count as zero.
func (v *Validator) ValidateInputs(s Sample, src schema.Source, excludeCase bool) (*InputReport, error) {
	docs, err := v.loader.Read(src)
	if err != nil {
		return nil, err
	}
	var last schema.Document
	checked := 0
	for i, doc := range docs {
		items := v.preprocess(doc).SampleItems()
		if i == len(docs)-1 {
			last = items
		}
		if items == nil {
			continue
		}
		if err := validateObject(s.ToMap(), schema.Document(items), v.loader.Open, excludeCase); err != nil {
			return nil, err
		}
		checked++
	}
	if checked == 0 {
		return nil, ErrNoSampleSchema
	}

	required := attrValues(s, last[schema.KeyRequiredFiles])
	all := attrValues(s, last[schema.KeyFiles])
	all = append(all, required...)

	report := &InputReport{
		Missing:        []string{},
		RequiredInputs: unique(required),
		AllInputs:      unique(all),
	}

	var total int64
	unsized := 0
	for _, path := range report.AllInputs {
		n, err := v.size(path)
		if err != nil {
			unsized++
			v.log.Debug("cannot size input", zap.String("path", path), zap.Error(err))
			continue
		}
		total += n
	}
	if unsized > 0 {
		v.log.Warn("input files missing, job input size was not calculated accurately", zap.Int("count", unsized))
	}
	report.InputFileSize = float64(total) / gibibyte

	for _, path := range report.RequiredInputs {
		if ok, _ := afero.Exists(v.fs, path); !ok {
			report.Missing = append(report.Missing, path)
		}
	}
	return report, nil
}

// size is the size of a file, or the total size of the files under a
// directory.
func (v *Validator) size(path string) (int64, error) {
	info, err := v.fs.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = afero.Walk(v.fs, path, func(_ string, fi fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if !fi.IsDir() {
			total += fi.Size()
		}
		return nil
	})
	return total, err
}

// attrValues collects the values of the named attributes of s. names is a
// single attribute name or a list of them.
func attrValues(s Sample, names any) []string {
	var out []string
	for _, name := range pep.Flatten(names) {
		out = append(out, pep.Flatten(s.Attr(name))...)
	}
	return out
}

func unique(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
