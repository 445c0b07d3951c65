// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confreg/confreg/pkg/litedit"
)

var errConflictingFlags = errors.New("--restore and --discard are mutually exclusive")

func newRecoverCommand(app *App) *cobra.Command {
	var restore, discard bool
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Inspect or resolve a backup left by an interrupted edit",
		Long: `Inspect or resolve a backup left by an interrupted edit.

Every write copies the target file to <name>.bak.<ext> first and removes the
copy once the new content is in place. A leftover copy means the last write
did not finish; confreg refuses to edit the file until it is resolved.

  --restore  put the backup content back and remove the backup
  --discard  keep the current content and remove the backup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if restore && discard {
				return fail("recover", "", errConflictingFlags)
			}
			s, err := app.newSession(cmd.Context(), false)
			if err != nil {
				return fail("recover", "", err)
			}
			guard := s.editor.Guard()
			backup := litedit.BackupPath(s.target)

			pending, err := guard.Pending(s.target)
			if err != nil {
				return fail("recover", backup, err)
			}
			if !pending {
				fmt.Fprintf(app.stdout, "%s no backup for %s\n", SuccessStyle.Render("ok:"), s.target)
				return nil
			}

			switch {
			case restore:
				if err := guard.Restore(s.target); err != nil {
					return fail("restore backup", backup, err)
				}
				fmt.Fprintf(app.stdout, "%s %s from %s\n", SuccessStyle.Render("restored"), s.target, backup)
			case discard:
				if err := guard.Discard(s.target); err != nil {
					return fail("discard backup", backup, err)
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("removed"), backup)
			default:
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("pending backup:"), backup)
				fmt.Fprintln(app.stdout, "Run 'confreg recover --restore' to roll back or 'confreg recover --discard' to keep the current file.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&restore, "restore", false, "restore the file from its backup")
	cmd.Flags().BoolVar(&discard, "discard", false, "delete the backup and keep the current file")
	return cmd
}
