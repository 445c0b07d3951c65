// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confreg/confreg/internal/config"
)

// newConfigCommand creates the `confreg config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage confreg configuration",
		Long: `Manage confreg configuration.

Configuration is read from the first file found:
  - the --config flag
  - Linux: ~/.config/confreg/config.cue
    macOS: ~/Library/Application Support/confreg/config.cue
    Windows: %APPDATA%\confreg\config.cue
  - confreg.cue in the project root

CONFREG_* environment variables override file values, e.g. CONFREG_TARGET_PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := app.projectRoot()
			if err != nil {
				return fail("show configuration", "", err)
			}
			cfg, source, err := config.Load(cmd.Context(), config.LoadOptions{
				ConfigFilePath: app.flags.configPath,
				WorkDir:        root,
				Fs:             app.Fs,
			})
			if err != nil {
				return fail("show configuration", source, err)
			}
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintln(app.stderr, SubtitleStyle.Render("# source: "+source))
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.flags.configPath
			if path == "" {
				p, err := config.UserConfigPath("")
				if err != nil {
					return fail("create configuration", "", err)
				}
				path = p
			}
			wrote, err := config.WriteDefault(app.Fs, path, force)
			if err != nil {
				return fail("create configuration", path, err)
			}
			if !wrote {
				fmt.Fprintf(app.stdout, "%s %s already exists (use --force to overwrite)\n", SubtitleStyle.Render("kept"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}
