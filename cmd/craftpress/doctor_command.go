package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"craftpress/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, credentials, and service connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			clients, err := ctx.newClients()
			if err != nil {
				return err
			}

			results := preflight.CheckAll(cmd.Context(), cfg,
				clients.OpenAI, clients.MediaFire, clients.WordPress)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader("Environment", colorize))
			for _, result := range results {
				fmt.Fprintln(out, renderVerdictLine(result.Name, result.Passed, result.Detail, colorize))
			}

			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
