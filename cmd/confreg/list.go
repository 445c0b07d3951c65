// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confreg/confreg/internal/registrar"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "list [providers|aliases]",
		Short:     "Show the live items of the target file",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"providers", "aliases"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), false)
			if err != nil {
				return fail("list", "", err)
			}
			kinds := []registrar.Kind{registrar.Provider, registrar.Alias}
			if len(args) == 1 {
				kinds = kinds[:1]
				if args[0] == "aliases" {
					kinds = []registrar.Kind{registrar.Alias}
				}
			}
			for _, k := range kinds {
				items, err := s.registrar.List(k)
				if err != nil {
					return fail("list", s.target, err)
				}
				fmt.Fprintf(app.stdout, "%s (%d)\n", TitleStyle.Render(listTitle(k, s)), len(items))
				for _, it := range items {
					fmt.Fprintf(app.stdout, "  %s\n", it)
				}
			}
			return nil
		},
	}
}

func listTitle(k registrar.Kind, s *session) string {
	if k == registrar.Alias {
		return s.cfg.Target.AliasesKey
	}
	return s.cfg.Target.ProvidersKey
}
