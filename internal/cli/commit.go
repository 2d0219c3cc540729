package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate a commit message and commit the staged changes with it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		stop := startSpinner(" Generating commit message...")
		msg, err := svc.RunAndCommit(cmd.Context(), pipelineOptions())
		stop()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Committed:\n%s\n", msg.String())
		return nil
	},
}
