package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pepkit/eido/internal/health"
	"github.com/pepkit/eido/internal/schema"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the eido configuration and environment",
		Long: `Run health checks on the eido setup:
  - the configuration files and EIDO_ environment variables load and validate
  - the configured default schema can be read, imports included
  - the configured server address is a valid host:port`,
		Example: `  # Check the local setup
  eido doctor

  # Check another config file
  eido doctor --config ./team/eido.json`,
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		// The configuration is loaded by the checks themselves so a broken
		// config is reported instead of aborting the command.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			report := health.RunHealthChecks(health.Options{
				ConfigPath: a.opts.configPath,
				Loader:     schema.NewLoader(),
			})
			fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
			if !report.Passed {
				return NewExitError(ExitMissingPrerequisite)
			}
			return nil
		},
	}
}
