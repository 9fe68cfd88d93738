package cli

import (
	"github.com/spf13/cobra"

	clierrors "github.com/pepkit/eido/internal/errors"
	"github.com/pepkit/eido/internal/inspection"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		sampleNames []string
		attrLimit   int
		stIndex     string
	)
	cmd := &cobra.Command{
		Use:   "inspect <project_config.yaml>",
		Short: "Inspect a PEP",
		Long: `Show a summary of the project, or the attributes of the named samples.

Sample listings are cut to --attr-limit attributes.`,
		Example: `  eido inspect project_config.yaml
  eido inspect project_config.yaml -n frog_1,frog_2 -l 3`,
		GroupID: GroupPEP,
		Args:    projectArg("inspect"),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.loadProject(args[0], stIndex)
			if err != nil {
				return err
			}
			if err := inspection.Inspect(cmd.OutOrStdout(), project, sampleNames, attrLimit); err != nil {
				return clierrors.Wrap(err, clierrors.Runtime)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sampleNames, "sample-name", "n", nil, "Names of the samples to inspect")
	cmd.Flags().IntVarP(&attrLimit, "attr-limit", "l", inspection.DefaultAttrLimit, "Number of sample attributes to display")
	cmd.Flags().StringVar(&stIndex, "st-index", "", "Sample table column that names samples")
	return cmd
}
