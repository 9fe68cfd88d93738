package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pepkit/eido/internal/conversion"
	clierrors "github.com/pepkit/eido/internal/errors"
)

type convertOptions struct {
	format   string
	args     []string
	paths    []string
	list     bool
	describe bool
	stIndex  string
}

func newConvertCmd(a *app) *cobra.Command {
	var o convertOptions
	cmd := &cobra.Command{
		Use:   "convert [project_config.yaml]",
		Short: "Convert a PEP using an available filter",
		Long: `Convert a PEP to another format with one of the registered filters.

Results a filter produces are printed, or written to the file given for
their name with --paths.`,
		Example: `  eido convert --list
  eido convert -f processed --describe
  eido convert project_config.yaml -f csv
  eido convert project_config.yaml -f processed -a samples_as_objects=true --paths samples=out/samples.yaml`,
		GroupID: GroupPEP,
		Args:    optionalProjectArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.format, "format", "f", "", "Output format (name of filter; use --list to see available ones)")
	f.StringArrayVarP(&o.args, "args", "a", nil, "Filter argument as key=value; repeatable")
	f.StringArrayVar(&o.paths, "paths", nil, "Output path of a filter result as result=path; repeatable")
	f.BoolVarP(&o.list, "list", "l", false, "List available filters")
	f.BoolVarP(&o.describe, "describe", "d", false, "Show description of the filter given with --format")
	f.StringVar(&o.stIndex, "st-index", "", "Sample table column that names samples")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, args []string, o convertOptions) error {
	out := cmd.OutOrStdout()
	if o.list {
		fmt.Fprintln(out, "Available filters:")
		for _, name := range a.filters.Names() {
			fmt.Fprintf(out, " - %s\n", name)
		}
		return nil
	}

	if o.format == "" {
		return clierrors.NewArgumentErrorWithUsage(
			"--format is required",
			"eido convert <project_config.yaml> -f <filter>",
			"Run 'eido convert --list' to see available filters",
		)
	}
	filter, ok := a.filters.Get(o.format)
	if !ok {
		return clierrors.FilterNotFound(o.format, a.filters.Names())
	}
	if o.describe {
		fmt.Fprintln(out, filter.Description)
		return nil
	}
	if len(args) == 0 {
		return clierrors.MissingProjectArg("convert")
	}

	params, err := parseKeyValues("--args", o.args)
	if err != nil {
		return err
	}
	paths, err := parseKeyValues("--paths", o.paths)
	if err != nil {
		return err
	}

	project, err := a.loadProject(args[0], o.stIndex)
	if err != nil {
		return err
	}
	results, err := conversion.Run(a.filters, project, o.format, params)
	if err != nil {
		return clierrors.Wrap(err, clierrors.Runtime)
	}
	if err := conversion.Save(results, paths, out); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "saving conversion results",
			"Check that the --paths targets are writable")
	}
	a.log.Info("Conversion successful", zap.String("filter", o.format))
	return nil
}

func optionalProjectArg(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("expected at most one PEP, got %d arguments", len(args)),
			cmd.UseLine(),
		)
	}
	return nil
}

// parseKeyValues splits key=value pairs. Values may contain '='.
func parseKeyValues(flag string, pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, clierrors.InvalidKeyValue(flag, kv)
		}
		out[k] = v
	}
	return out, nil
}
