package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"craftpress/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the OpenAI, MediaFire, and WordPress credentials before running craftpress.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files directory:  %s\n", cfg.Paths.FilesDir)
			fmt.Fprintf(out, "Data directory:   %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log directory:    %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Images directory: %s\n", cfg.Paths.ImagesDir)
			fmt.Fprintf(out, "State backend:    %s\n", cfg.State.Backend)
			fmt.Fprintf(out, "Extensions:       %s\n", strings.Join(cfg.Pipeline.AcceptedExtensions, ", "))
			fmt.Fprintf(out, "Max retries:      %d\n", cfg.Pipeline.MaxRetries)
			fmt.Fprintf(out, "Batch size:       %d (delay %s)\n", cfg.Pipeline.BatchSize, cfg.BatchDelay())
			fmt.Fprintf(out, "OpenAI model:     %s (images: %s)\n", cfg.OpenAI.Model, cfg.OpenAI.ImageModel)
			fmt.Fprintf(out, "WordPress site:   %s\n", cfg.WordPress.URL)
			fmt.Fprintf(out, "Categories:       %d configured, default id %d\n",
				len(cfg.Categories), cfg.Pipeline.DefaultCategoryID)
			fmt.Fprintf(out, "OpenAI key set:   %s\n", yesNo(cfg.OpenAI.APIKey != ""))
			fmt.Fprintf(out, "MediaFire creds:  %s\n", yesNo(cfg.MediaFire.Email != "" && cfg.MediaFire.Password != ""))
			fmt.Fprintf(out, "WordPress creds:  %s\n", yesNo(cfg.WordPress.Username != "" && cfg.WordPress.AppPassword != ""))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
