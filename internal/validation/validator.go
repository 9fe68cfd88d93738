// Package validation checks PEP projects, their configuration and individual
// samples against JSON-Schema documents, and takes inventory of the input
// files a sample declares.
package validation

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pepkit/eido/internal/pep"
	"github.com/pepkit/eido/internal/schema"
)

// Project is the subject of project and config validation.
type Project interface {
	ToMap() map[string]any
	ResolveSample(ref pep.SampleRef) (*pep.Sample, error)
}

// Sample is the subject of sample and input validation.
type Sample interface {
	ToMap() map[string]any
	Attr(name string) any
}

// Validator runs schema checks. The zero value is not usable; call New.
type Validator struct {
	loader *schema.Loader
	fs     afero.Fs
	log    *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(log *zap.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}

// WithFs sets the filesystem input files are looked up on.
func WithFs(fs afero.Fs) Option {
	return func(v *Validator) { v.fs = fs }
}

// WithLoader sets the schema loader.
func WithLoader(l *schema.Loader) Option {
	return func(v *Validator) { v.loader = l }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{fs: afero.NewOsFs(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	if v.loader == nil {
		v.loader = schema.NewLoader(schema.WithLogger(v.log))
	}
	return v
}

// ReadSchema loads src and expands its imports.
func (v *Validator) ReadSchema(src schema.Source) ([]schema.Document, error) {
	return v.loader.Read(src)
}

// ValidateProject validates the whole project against every document src
// expands to. The first failing document ends the check.
func (v *Validator) ValidateProject(p Project, src schema.Source, excludeCase bool) error {
	docs, err := v.loader.Read(src)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		doc = v.preprocess(doc)
		if err := validateObject(p.ToMap(), doc, v.loader.Open, excludeCase); err != nil {
			return err
		}
		v.log.Debug("project validated", zap.Int("document", i), zap.Stringer("schema", src))
	}
	return nil
}

// ValidateConfig validates the project against every document with the
// samples section removed from the schema.
func (v *Validator) ValidateConfig(p Project, src schema.Source, excludeCase bool) error {
	docs, err := v.loader.Read(src)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		narrowed := schema.RemoveSamples(v.preprocess(doc.Clone()))
		if err := validateObject(p.ToMap(), narrowed, v.loader.Open, excludeCase); err != nil {
			return err
		}
		v.log.Debug("config validated", zap.Int("document", i), zap.Stringer("schema", src))
	}
	return nil
}

// ValidateSample validates one sample, chosen by position or name, against
// the sample item schema of every document. Resolution failures are returned
// as is: pep.ErrSampleNotFound or a *pep.IndexError.
func (v *Validator) ValidateSample(p Project, ref pep.SampleRef, src schema.Source, excludeCase bool) error {
	s, err := p.ResolveSample(ref)
	if err != nil {
		return err
	}
	docs, err := v.loader.Read(src)
	if err != nil {
		return err
	}
	checked := 0
	for i, doc := range docs {
		items := v.preprocess(doc).SampleItems()
		if items == nil {
			v.log.Debug("schema document has no sample items", zap.Int("document", i))
			continue
		}
		if err := validateObject(s.ToMap(), schema.Document(items), v.loader.Open, excludeCase); err != nil {
			return err
		}
		checked++
		v.log.Debug("sample validated", zap.Int("document", i), zap.String("sample", ref.String()))
	}
	if checked == 0 {
		return ErrNoSampleSchema
	}
	return nil
}

func (v *Validator) preprocess(doc schema.Document) schema.Document {
	if ce := v.log.Check(zap.DebugLevel, "schema before preprocessing"); ce != nil {
		ce.Write(zap.Any("schema", doc))
	}
	doc = schema.Preprocess(doc)
	if ce := v.log.Check(zap.DebugLevel, "schema after preprocessing"); ce != nil {
		ce.Write(zap.Any("schema", doc))
	}
	return doc
}

var defaultValidator = New()

// ValidateProject validates p with a default Validator.
func ValidateProject(p Project, src schema.Source, excludeCase bool) error {
	return defaultValidator.ValidateProject(p, src, excludeCase)
}

// ValidateConfig validates the configuration of p with a default Validator.
func ValidateConfig(p Project, src schema.Source, excludeCase bool) error {
	return defaultValidator.ValidateConfig(p, src, excludeCase)
}

// ValidateSample validates one sample of p with a default Validator.
func ValidateSample(p Project, ref pep.SampleRef, src schema.Source, excludeCase bool) error {
	return defaultValidator.ValidateSample(p, ref, src, excludeCase)
}

// ValidateInputs takes inventory of the input files of s with a default
// Validator.
func ValidateInputs(s Sample, src schema.Source, excludeCase bool) (*InputReport, error) {
	return defaultValidator.ValidateInputs(s, src, excludeCase)
}
