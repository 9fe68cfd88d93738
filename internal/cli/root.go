// Package cli provides the Cobra commands of the eido command line: schema
// validation, inspection and conversion of PEPs, and the HTTP front-end.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pepkit/eido/internal/config"
	"github.com/pepkit/eido/internal/conversion"
	clierrors "github.com/pepkit/eido/internal/errors"
	"github.com/pepkit/eido/internal/logging"
	"github.com/pepkit/eido/internal/pep"
	"github.com/pepkit/eido/internal/progress"
	"github.com/pepkit/eido/internal/schema"
	"github.com/pepkit/eido/internal/validation"
)

// Command group IDs for organizing help output
const (
	GroupPEP     = "pep"
	GroupUtility = "utility"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	verbosity  int
	logLevel   string
	debug      bool
}

// app is the state shared by all commands once the persistent flags and the
// configuration have been resolved.
type app struct {
	opts      globalOptions
	cfg       *config.Configuration
	log       *zap.Logger
	validator *validation.Validator
	filters   *conversion.Registry
}

// NewRootCmd builds the eido command tree.
func NewRootCmd() *cobra.Command {
	a := &app{filters: conversion.DefaultRegistry()}

	root := &cobra.Command{
		Use:   "eido",
		Short: "eido - Interact with PEPs",
		Long: `eido - Interact with PEPs

Validate Portable Encapsulated Projects against JSON-Schema documents,
inspect their samples and convert them to other formats.

http://eido.databio.org/`,
		Example: `  # Validate a whole project
  eido validate project_config.yaml -s http://schema.databio.org/pep/2.0.0.yaml

  # Validate one sample, reporting only the error message
  eido validate project_config.yaml -s schema.yaml -n frog_1 -e

  # Show two samples
  eido inspect project_config.yaml -n frog_1,frog_2

  # Convert to CSV
  eido convert project_config.yaml -f csv`,
		Args:              rootArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
			fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
	})

	root.AddGroup(&cobra.Group{ID: GroupPEP, Title: "PEP Commands:"})
	root.AddGroup(&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"})
	root.SetHelpCommandGroupID(GroupUtility)
	root.SetCompletionCommandGroupID(GroupUtility)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", config.DefaultLocalConfigPath, "Path to config file")
	flags.IntVar(&a.opts.verbosity, "verbosity", -1,
		fmt.Sprintf("Choose level of verbosity 0-%d (error, critical, warn, info, debug)", logging.MaxVerbosity))
	flags.StringVar(&a.opts.logLevel, "logging-level", "", "Logging level (debug, info, warn, error)")
	flags.BoolVar(&a.opts.debug, "dbg", false, "Turn on debug mode")

	root.AddCommand(
		newValidateCmd(a),
		newInspectCmd(a),
		newConvertCmd(a),
		newFiltersCmd(a),
		newServeCmd(a),
		newDoctorCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line with os.Args and returns the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes args and reports any error on stderr.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	var ee *exitError
	if err != nil && !errors.As(err, &ee) {
		clierrors.FprintError(stderr, err)
	}
	return ExitCode(err)
}

func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return clierrors.NewArgumentError(
		fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath()),
		fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()),
	)
}

// projectArg requires exactly one PEP argument.
func projectArg(command string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return clierrors.MissingProjectArg(command)
		}
		return nil
	}
}

// setup loads the configuration and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(a.opts.configPath); err != nil {
			return clierrors.ConfigFileNotFound(a.opts.configPath)
		}
	}
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return clierrors.ConfigParseError(a.opts.configPath, err)
	}

	level := a.opts.logLevel
	if level == "" && !a.opts.debug {
		level = cfg.LogLevel
	}
	log, err := logging.New(logging.Options{
		Level:     level,
		Verbosity: a.opts.verbosity,
		Debug:     a.opts.debug,
		Output:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return clierrors.NewArgumentError(err.Error(), "Use --verbosity 0-4 or --logging-level debug|info|warn|error")
	}

	a.cfg = cfg
	a.log = log
	fetcher := schema.NewFetcher()
	fetcher.Retry.MaxRetries = cfg.FetchRetries
	loader := schema.NewLoader(schema.WithFetcher(fetcher), schema.WithLogger(log))
	a.validator = validation.New(validation.WithLogger(log), validation.WithLoader(loader))
	return nil
}

// loadProject reads the PEP at path, using index or the configured sample
// table index.
func (a *app) loadProject(path, index string) (*pep.Project, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, clierrors.ProjectNotFound(path)
	}
	if index == "" {
		index = a.cfg.SampleTableIndex
	}
	a.log.Debug("creating project", zap.String("config", path), zap.String("sample_table_index", index))
	p, err := pep.Load(path, pep.WithSampleTableIndex(index))
	if err != nil {
		return nil, clierrors.ProjectLoadError(path, err)
	}
	return p, nil
}

// display returns a progress display when stderr is a terminal and progress
// is enabled, otherwise nil.
func (a *app) display(cmd *cobra.Command) *progress.Display {
	if !a.cfg.ShowProgress {
		return nil
	}
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		return nil
	}
	caps := progress.DetectTerminalCapabilities(f)
	if !caps.IsTTY {
		return nil
	}
	return progress.NewDisplay(caps, f)
}

// step runs fn, shown as step on d when d is not nil.
func step(d *progress.Display, s progress.Step, fn func() error) error {
	if d == nil {
		return fn()
	}
	return d.Run(s, fn)
}
