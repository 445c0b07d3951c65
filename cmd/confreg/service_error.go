// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/fang"

	"github.com/confreg/confreg/internal/discovery"
	"github.com/confreg/confreg/internal/issue"
	"github.com/confreg/confreg/pkg/litedit"
)

// issueStyle is the glamour style for catalog entries printed to stderr.
const issueStyle = "dark"

// classifyError maps domain failures to catalog entries and suggestions.
// Errors that already carry context are returned unchanged.
func classifyError(op, resource string, err error) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ec := issue.NewErrorContext().WithOperation(op).WithResource(resource)
	switch {
	case errors.Is(err, litedit.ErrKeyNotFound):
		ec.WithIssue(issue.KeyNotFoundId).
			WithSuggestion("Check target.providers_key and target.aliases_key in the configuration")
	case errors.Is(err, litedit.ErrUnterminatedLiteral):
		ec.WithIssue(issue.UnterminatedLiteralId).
			WithSuggestion("Check that the literal's brackets are balanced")
	case errors.Is(err, litedit.ErrNotLiteral):
		ec.WithIssue(issue.NotLiteralId).
			WithSuggestion("Edit the array the expression reads from by hand")
	case errors.Is(err, litedit.ErrNoInsertionPoint):
		ec.WithIssue(issue.NoInsertionPointId)
	case errors.Is(err, litedit.ErrBackupPresent):
		ec.WithIssue(issue.BackupPresentId).
			WithSuggestion("Run 'confreg recover' to inspect the backup")
	case errors.Is(err, litedit.ErrWriteFailure), errors.Is(err, litedit.ErrCleanupFailed):
		ec.WithIssue(issue.WriteFailureId).
			WithSuggestions(
				"Run 'confreg recover --restore' to put the previous content back",
				"Check free disk space and write permission on the target directory",
			)
	case errors.Is(err, discovery.ErrPackageNotFound), errors.Is(err, discovery.ErrInvalidPackageName):
		ec.WithIssue(issue.PackageNotFoundId).
			WithSuggestion("Install the package with composer first")
	case errors.Is(err, discovery.ErrNothingToRegister):
		ec.WithIssue(issue.NothingToRegisterId)
	case errors.Is(err, fs.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId)
	default:
		return issue.WrapWithContext(err, op, resource)
	}
	return ec.Wrap(err).BuildError()
}

// fail classifies err and attaches the exit code.
func fail(op, resource string, err error) error {
	err = classifyError(op, resource, err)
	code := ExitFailure
	if errors.Is(err, litedit.ErrBackupPresent) {
		code = ExitBackupPending
	}
	return &ExitError{Code: code, Err: err}
}

// errorHandler prints errors for fang. Actionable errors show their
// suggestions; in verbose mode the error chain and catalog entry follow.
func errorHandler(verbose *bool) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			fang.DefaultErrorHandler(w, styles, err)
			return
		}
		renderActionableError(w, ae, *verbose)
	}
}

func renderActionableError(w io.Writer, ae *issue.ActionableError, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(verbose))
	if !verbose {
		return
	}
	if guidance, ok := ae.Guidance(issueStyle); ok {
		fmt.Fprint(w, guidance)
	}
}
