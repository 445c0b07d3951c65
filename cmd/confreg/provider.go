// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confreg/confreg/internal/registrar"
)

func newProviderCommand(app *App) *cobra.Command {
	providerCmd := &cobra.Command{
		Use:   "provider",
		Short: "Add or disable a service provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var dryRun bool
	addCmd := &cobra.Command{
		Use:   "add <class>",
		Short: "Append a provider class unless it is already registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), dryRun)
			if err != nil {
				return fail("add provider", args[0], err)
			}
			if err := s.requireNoBackup(); err != nil {
				return fail("add provider", args[0], err)
			}
			c, err := s.registrar.AddProvider(args[0])
			if err != nil {
				return fail("add provider", s.target, err)
			}
			printChange(app, c)
			return nil
		},
	}
	addCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would change without writing")

	disableCmd := &cobra.Command{
		Use:   "disable <class>",
		Short: "Comment out every live entry of a provider class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), false)
			if err != nil {
				return fail("disable provider", args[0], err)
			}
			if err := s.requireNoBackup(); err != nil {
				return fail("disable provider", args[0], err)
			}
			n, err := s.registrar.DisableProvider(args[0])
			if err != nil {
				return fail("disable provider", s.target, err)
			}
			printDisabled(app, args[0], n)
			return nil
		},
	}

	providerCmd.AddCommand(addCmd, disableCmd)
	return providerCmd
}

func printChange(app *App, c registrar.Change) {
	style := SubtitleStyle
	if c.Outcome != registrar.Skipped {
		style = SuccessStyle
	}
	fmt.Fprintf(app.stdout, "%s %s %s\n", style.Render(c.Outcome.String()+":"), c.Kind, CmdStyle.Render(c.Item.String()))
}

func printDisabled(app *App, item string, n int) {
	if n == 0 {
		fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("no live entry for"), CmdStyle.Render(item))
		return
	}
	fmt.Fprintf(app.stdout, "%s %d %s of %s\n", SuccessStyle.Render("disabled"), n, plural(n, "entry", "entries"), CmdStyle.Render(item))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
