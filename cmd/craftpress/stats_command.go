package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"craftpress/internal/tracker"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var failedFlag int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show processing totals and recent failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			failed, err := store.ListFailed(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed: %d\n", stats.ProcessedCount)
			fmt.Fprintf(out, "Failed:    %d\n", stats.FailedCount)

			if len(failed) == 0 || failedFlag <= 0 {
				return nil
			}
			if len(failed) > failedFlag {
				failed = failed[len(failed)-failedFlag:]
			}

			fmt.Fprintf(out, "\nRecent failures (last %d):\n", len(failed))
			fmt.Fprintln(out, renderFailureTable(failed))
			return nil
		},
	}

	cmd.Flags().IntVar(&failedFlag, "failed", 5, "Number of recent failures to list (0 disables)")

	return cmd
}

func renderFailureTable(failed []tracker.FailedRecord) string {
	rows := make([][]string, 0, len(failed))
	for _, record := range failed {
		rows = append(rows, []string{
			record.Identity,
			record.Reason,
			strconv.Itoa(record.AttemptCount),
			record.LastAttemptAt.UTC().Format(time.RFC3339),
		})
	}
	return renderTable([]string{"Asset", "Reason", "Attempts", "Last Attempt"}, rows, 2)
}
