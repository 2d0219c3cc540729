package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a commit message proposed for the staged changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		stop := startSpinner(" Generating commit message...")
		msg, err := svc.Run(cmd.Context(), pipelineOptions())
		stop()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg.String())
		return nil
	},
}
