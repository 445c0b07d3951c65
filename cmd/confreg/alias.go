// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func newAliasCommand(app *App) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:   "alias",
		Short: "Add or disable a facade alias",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var dryRun bool
	addCmd := &cobra.Command{
		Use:   "add <alias> <facade>",
		Short: "Map an alias to a facade class",
		Long: `Map an alias to a facade class. An existing live entry for the alias
with a different facade is commented out first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), dryRun)
			if err != nil {
				return fail("add alias", args[0], err)
			}
			if err := s.requireNoBackup(); err != nil {
				return fail("add alias", args[0], err)
			}
			c, err := s.registrar.AddAlias(args[0], args[1])
			if err != nil {
				return fail("add alias", s.target, err)
			}
			printChange(app, c)
			return nil
		},
	}
	addCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would change without writing")

	disableCmd := &cobra.Command{
		Use:   "disable <alias>",
		Short: "Comment out every live entry of an alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), false)
			if err != nil {
				return fail("disable alias", args[0], err)
			}
			if err := s.requireNoBackup(); err != nil {
				return fail("disable alias", args[0], err)
			}
			n, err := s.registrar.DisableAlias(args[0])
			if err != nil {
				return fail("disable alias", s.target, err)
			}
			printDisabled(app, args[0], n)
			return nil
		},
	}

	aliasCmd.AddCommand(addCmd, disableCmd)
	return aliasCmd
}
