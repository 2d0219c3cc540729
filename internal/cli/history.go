package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freema/diffwhisperer/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently generated commit messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.History.Enabled || cfg.History.Path == "" {
			return fmt.Errorf("history is disabled in configuration")
		}

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No generations recorded yet.")
			return nil
		}

		for _, e := range entries {
			status := "proposed"
			if e.Committed {
				status = "committed"
			}
			title, _, _ := strings.Cut(e.Message, "\n")
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %s  (+%d -%d, %s, %s)\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04"),
				status,
				title,
				e.Insertions, e.Deletions,
				e.Model,
				e.RepoPath,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of entries to show")
}
