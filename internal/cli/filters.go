package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newFiltersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "filters",
		Short:   "List the registered conversion filters",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := color.New(color.Bold)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range a.filters.Filters() {
				fmt.Fprintf(tw, "%s\t%s\n", name.Sprint(f.Name), f.Description)
			}
			return tw.Flush()
		},
	}
}
