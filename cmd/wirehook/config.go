// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/wirehook/wirehook/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `wirehook config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wirehook configuration",
		Long: `Manage wirehook configuration.

Configuration is read from wirehook.cue in the project directory. Any
WIREHOOK_<KEY> environment variable overrides the file, and APP_ENV is
honored for the environment.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, source, err := config.LoadWithSource(cmd.Context(), app.loadOptions())
			if err != nil {
				return err
			}
			if source == "" {
				source = "defaults"
			}
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("// source: "+source))
			fmt.Fprintf(app.stdout, "// project: %s\n", cfg.ProjectDir)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default wirehook.cue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := app.flags.projectDir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = wd
			}
			path, created, err := config.CreateDefault(dir)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("exists"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("created"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.flags.configPath != "" {
				fmt.Fprintln(app.stdout, app.flags.configPath)
				return nil
			}
			cfg, source, err := config.LoadWithSource(cmd.Context(), app.loadOptions())
			if err != nil {
				return err
			}
			if source == "" {
				source = config.FilePath(cfg.ProjectDir)
			}
			fmt.Fprintln(app.stdout, source)
			return nil
		},
	})

	return cfgCmd
}
