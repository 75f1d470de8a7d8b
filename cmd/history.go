package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past fetch runs from the local journal",
	Long: `Show the fetch journal: every past run with its cycle, outcome, size,
and attempt count. The journal lives in a local bbolt database and is
written automatically by the fetch command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		journal, err := deps.Journal()
		if err != nil {
			return err
		}
		runs, err := journal.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No fetch runs recorded yet.")
			return nil
		}

		printSimpleTable(cmd.OutOrStdout(),
			[]string{"Started", "Preset", "Product", "Cycle", "OK", "Bytes", "Attempts", "Seconds"},
			func(add func(...string)) {
				for _, r := range runs {
					ok := "no"
					if r.Success {
						ok = "yes"
					}
					add(
						r.StartedAt.Format(time.RFC3339),
						r.Preset,
						r.Product,
						r.Cycle,
						ok,
						strconv.Itoa(r.Bytes),
						strconv.Itoa(r.Attempts),
						strconv.FormatFloat(r.DurationSeconds, 'f', 1, 64),
					)
				}
			})
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all journal entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		journal, err := deps.Journal()
		if err != nil {
			return err
		}
		st, err := journal.JournalStats()
		if err != nil {
			return err
		}
		if err := journal.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %d journal entries.\n", st.Runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20,
		"number of runs to show, 0 for all")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
