package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"craftpress/internal/cleanup"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var imageAge, logAge, failedAge time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove aged images, rotated logs, and stale failure records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := cleanup.Run(cmd.Context(), cfg, store, logger, cleanup.Options{
				ImageAge:  imageAge,
				LogAge:    logAge,
				FailedAge: failedAge,
				DryRun:    dryRun,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "Dry run, nothing deleted")
			}
			fmt.Fprintf(out, "Images removed:         %d\n", report.ImagesRemoved)
			fmt.Fprintf(out, "Log files removed:      %d\n", report.LogsRemoved)
			fmt.Fprintf(out, "Failure records pruned: %d\n", report.RecordsPruned)
			fmt.Fprintf(out, "Freed: %.1f MB\n", float64(report.BytesFreed)/(1024*1024))
			return nil
		},
	}

	cmd.Flags().DurationVar(&imageAge, "image-age", 30*24*time.Hour, "Remove generated images older than this (0 disables)")
	cmd.Flags().DurationVar(&logAge, "log-age", 7*24*time.Hour, "Remove rotated log files older than this (0 disables)")
	cmd.Flags().DurationVar(&failedAge, "failed-age", 30*24*time.Hour, "Prune failure records whose last attempt is older than this (0 disables)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be removed without deleting")

	return cmd
}
