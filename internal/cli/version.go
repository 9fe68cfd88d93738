package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pepkit/eido/internal/build"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Display version information",
		Long:    "Display version, commit, build date, and Go version information for eido",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := build.Current()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "eido version %s\n", info.Version)
			fmt.Fprintf(out, "Built from commit: %s\n", info.Commit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
			return nil
		},
	}
}
