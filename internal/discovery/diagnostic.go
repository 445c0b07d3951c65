// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
)

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"

	// CodeManifestEmpty means a manifest was found but listed nothing.
	CodeManifestEmpty DiagnosticCode = "manifest_empty"
	// CodePhpunitParseSkipped means phpunit.xml could not be parsed and its
	// test suites were not excluded from the scan.
	CodePhpunitParseSkipped DiagnosticCode = "phpunit_parse_skipped"
	// CodeSourceRootMissing means an autoload path does not exist on disk.
	CodeSourceRootMissing DiagnosticCode = "source_root_missing"
)

// ErrInvalidSeverity is returned by Severity.IsValid for unknown levels.
var ErrInvalidSeverity = errors.New("invalid diagnostic severity")

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// Diagnostic is a non-fatal finding returned with a Result so the CLI
	// decides how to render it.
	Diagnostic struct {
		Severity Severity
		Code     DiagnosticCode
		Message  string
		// Path is the file the diagnostic refers to, if any.
		Path  string
		Cause error
	}
)

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidSeverity, string(s))}
	}
}

func warning(code DiagnosticCode, path, msg string, cause error) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Message: msg, Path: path, Cause: cause}
}
