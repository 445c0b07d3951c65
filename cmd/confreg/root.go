// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for confreg.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "confreg",
		Short: "Register package service providers and facades in config files",
		Long: TitleStyle.Render("confreg") + SubtitleStyle.Render(" - register service providers and facades") + `

confreg edits the array literals of a framework configuration file in place,
keeping its comments, quoting and indentation. It can discover what an
installed Composer package offers and register it in one step.

` + SubtitleStyle.Render("Examples:") + `
  confreg register barryvdh/laravel-debugbar   Discover and register a package
  confreg provider add 'App\Providers\Foo'     Add one provider
  confreg alias add Debugbar 'Barryvdh\Debugbar\Facade'
  confreg list providers                       Show the live providers
  confreg recover                              Resolve an interrupted edit`,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/confreg/config.cue)")
	flags.StringVarP(&app.flags.file, "file", "f", "", "file to edit (default is target.path from the configuration)")
	flags.StringVarP(&app.flags.dir, "dir", "C", "", "project root (default is the working directory)")

	rootCmd.AddCommand(
		newRegisterCommand(app),
		newProviderCommand(app),
		newAliasCommand(app),
		newListCommand(app),
		newRecoverCommand(app),
		newConfigCommand(app),
	)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the code carried by the returned error.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler(&app.flags.verbose)),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}
