package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	clierrors "github.com/pepkit/eido/internal/errors"
	"github.com/pepkit/eido/internal/pep"
	"github.com/pepkit/eido/internal/progress"
	"github.com/pepkit/eido/internal/schema"
	"github.com/pepkit/eido/internal/validation"
)

type validateOptions struct {
	schema      string
	excludeCase bool
	sampleName  string
	justConfig  bool
	inputs      bool
	stIndex     string
}

func newValidateCmd(a *app) *cobra.Command {
	var o validateOptions
	cmd := &cobra.Command{
		Use:   "validate <project_config.yaml>",
		Short: "Validate a PEP or its components",
		Long: `Validate a PEP, its configuration only, or a single sample against a schema.

The schema may be a local YAML/JSON file or an http(s) URL. Schemas listed
under 'imports' are validated first.`,
		Example: `  eido validate project_config.yaml -s schema.yaml
  eido validate project_config.yaml -s schema.yaml -c
  eido validate project_config.yaml -s schema.yaml -n 0 -e
  eido validate project_config.yaml -s schema.yaml -n frog_1 --inputs`,
		GroupID: GroupPEP,
		Args:    projectArg("validate"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.schema, "schema", "s", "", "Path or URL of a PEP schema in YAML format (default: default_schema from config)")
	f.BoolVarP(&o.excludeCase, "exclude-case", "e", false,
		"Exclude the validation case from an error, leaving only the message. Useful for large PEPs")
	f.StringVarP(&o.sampleName, "sample-name", "n", "", "Name or index of the sample to validate. Only this sample is validated")
	f.BoolVarP(&o.justConfig, "just-config", "c", false, "Validate the project configuration only, excluding samples")
	f.BoolVarP(&o.inputs, "inputs", "i", false,
		"Also report the input files the sample declares and fail when required ones are missing. Needs --sample-name")
	f.StringVar(&o.stIndex, "st-index", "", "Sample table column that names samples")
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, path string, o validateOptions) error {
	if o.sampleName != "" && o.justConfig {
		return clierrors.InvalidFlagCombination("--sample-name and --just-config", "choose either one sample or the configuration")
	}
	if o.inputs && o.sampleName == "" {
		return clierrors.InvalidFlagCombination("--inputs without --sample-name", "input files are checked for one sample")
	}
	schemaRef := o.schema
	if schemaRef == "" {
		schemaRef = a.cfg.DefaultSchema
	}
	if schemaRef == "" {
		return clierrors.MissingSchema()
	}
	excludeCase := o.excludeCase || a.cfg.ExcludeCase

	project, err := a.loadProject(path, o.stIndex)
	if err != nil {
		return err
	}

	d := a.display(cmd)
	steps := progress.Steps("reading schema", "validating")

	var docs []schema.Document
	err = step(d, steps[0], func() error {
		var err error
		docs, err = a.validator.ReadSchema(schema.Ref(schemaRef))
		return err
	})
	if err != nil {
		return clierrors.SchemaLoadError(schemaRef, err)
	}
	src := schema.Loaded(docs)

	err = step(d, steps[1], func() error {
		switch {
		case o.justConfig:
			a.log.Debug("comparing project config against a schema", zap.String("project", path), zap.String("schema", schemaRef))
			return a.validator.ValidateConfig(project, src, excludeCase)
		case o.sampleName != "":
			a.log.Debug("comparing sample against a schema",
				zap.String("sample", o.sampleName), zap.String("project", path), zap.String("schema", schemaRef))
			return a.validator.ValidateSample(project, pep.ParseSampleRef(o.sampleName), src, excludeCase)
		default:
			a.log.Debug("comparing project against a schema", zap.String("project", path), zap.String("schema", schemaRef))
			return a.validator.ValidateProject(project, src, excludeCase)
		}
	})
	if err != nil {
		return validationError(err, o.sampleName)
	}
	if o.inputs {
		return a.reportInputs(cmd, project, o.sampleName, src, excludeCase)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Validation successful")
	return nil
}

// reportInputs prints the input file inventory of one sample.
func (a *app) reportInputs(cmd *cobra.Command, project *pep.Project, sampleName string, src schema.Source, excludeCase bool) error {
	sample, err := project.ResolveSample(pep.ParseSampleRef(sampleName))
	if err != nil {
		return validationError(err, sampleName)
	}
	report, err := a.validator.ValidateInputs(sample, src, excludeCase)
	if err != nil {
		return validationError(err, sampleName)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Required inputs: %s\n", strings.Join(report.RequiredInputs, ", "))
	fmt.Fprintf(out, "All inputs: %s\n", strings.Join(report.AllInputs, ", "))
	fmt.Fprintf(out, "Input file size: %.3f GiB\n", report.InputFileSize)
	if len(report.Missing) > 0 {
		return clierrors.MissingInputFiles(sample.Name(), report.Missing)
	}
	fmt.Fprintln(out, "Validation successful")
	return nil
}

// validationError categorizes a failure of the validation step.
func validationError(err error, sampleName string) error {
	var verr *validation.ValidationError
	var indexErr *pep.IndexError
	switch {
	case errors.As(err, &verr):
		return clierrors.ValidationFailed(err)
	case errors.As(err, &indexErr):
		return clierrors.SampleIndexOutOfRange(indexErr.Index, indexErr.Len)
	case errors.Is(err, pep.ErrSampleNotFound):
		return clierrors.SampleNotFound(sampleName)
	case errors.Is(err, validation.ErrNoSampleSchema):
		return clierrors.WrapWithMessage(err, clierrors.Prerequisite, "cannot validate samples",
			"Describe samples under properties.samples.items in the schema")
	default:
		return clierrors.Wrap(err, clierrors.Runtime)
	}
}
