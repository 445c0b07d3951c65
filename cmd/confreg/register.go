// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/confreg/confreg/internal/discovery"
	"github.com/confreg/confreg/internal/issue"
	"github.com/confreg/confreg/internal/registrar"
)

func newRegisterCommand(app *App) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "register <vendor/package>",
		Short: "Discover and register a package's providers and aliases",
		Long: `Discover the service providers and facades of an installed package and
add them to the target file.

The package is inspected in this order: a provides.json, provides.toml or
provides.cue manifest, composer.json extra.laravel, then a scan of the
package's autoloaded PHP classes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, app, args[0], dryRun)
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would change without writing")
	return cmd
}

func runRegister(cmd *cobra.Command, app *App, pkg string, dryRun bool) error {
	ctx := cmd.Context()
	s, err := app.newSession(ctx, dryRun)
	if err != nil {
		return fail("register", pkg, err)
	}
	if err := s.requireNoBackup(); err != nil {
		return fail("register", pkg, err)
	}

	res, err := app.Discovery.Discover(ctx, app.Fs, discovery.Options{
		Root:          s.root,
		VendorDir:     s.cfg.Discovery.VendorDir,
		Package:       pkg,
		ProviderBases: s.cfg.Discovery.ProviderBases,
		FacadeBases:   s.cfg.Discovery.FacadeBases,
		Exclude:       s.cfg.Discovery.Exclude,
		Logger:        s.logger,
	})
	if errors.Is(err, discovery.ErrNothingToRegister) {
		// Not a failure: the package simply has nothing for this file.
		fmt.Fprintln(app.stdout, WarningStyle.Render("No service providers or facades found in "+pkg+"; nothing to register."))
		if s.verbose {
			if out, rerr := issue.Get(issue.NothingToRegisterId).Render(issueStyle); rerr == nil {
				fmt.Fprint(app.stderr, out)
			}
		}
		return nil
	}
	if err != nil {
		return fail("discover package", pkg, err)
	}
	for _, d := range res.Diagnostics {
		s.logger.Warn(d.Message, "code", d.Code, "path", d.Path)
	}

	if res.Source == discovery.SourceManifest || res.Source == discovery.SourceComposer {
		fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("Using"), res.Manifest)
	} else {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("Found by scanning package sources"))
	}

	report, err := s.registrar.Register(ctx, res)
	if report != nil {
		printReport(app.stdout, report, dryRun)
	}
	if err != nil {
		return fail("register", s.target, err)
	}
	return nil
}

func printReport(w io.Writer, report *registrar.Report, dryRun bool) {
	for _, c := range report.Changes {
		marker, style := "=", SubtitleStyle
		switch c.Outcome {
		case registrar.Added:
			marker, style = "+", SuccessStyle
		case registrar.Replaced:
			marker, style = "~", WarningStyle
		}
		fmt.Fprintf(w, "%s %s %s (%s)\n", style.Render(marker), c.Kind, CmdStyle.Render(c.Item.String()), c.Outcome)
	}
	summary := fmt.Sprintf("%d added, %d replaced, %d already present",
		report.Count(registrar.Added), report.Count(registrar.Replaced), report.Count(registrar.Skipped))
	if dryRun {
		summary += " (dry run, nothing written)"
	}
	fmt.Fprintln(w, summary)
}
