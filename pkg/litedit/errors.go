// SPDX-License-Identifier: MPL-2.0

package litedit

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when the quoted key does not occur in the file.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnterminatedLiteral is returned when no closing bracket follows the key.
	ErrUnterminatedLiteral = errors.New("unterminated literal")

	// ErrNoInsertionPoint is returned when the literal has no quote, comma or
	// opening bracket to anchor new text to.
	ErrNoInsertionPoint = errors.New("no insertion point")

	// ErrWriteFailure is returned when the new content could not be persisted.
	// The backup file is left in place.
	ErrWriteFailure = errors.New("write failed")

	// ErrNotLiteral is returned when the key holds an expression, such as a
	// method call, rather than an array literal that can be edited.
	ErrNotLiteral = errors.New("value is not an array literal")

	// ErrLoadFailure marks an evaluator failure. Add operations never return it;
	// they log it and fall back to defaults.
	ErrLoadFailure = errors.New("literal could not be evaluated")

	// ErrBackupPresent is returned when a backup from an unfinished edit exists.
	ErrBackupPresent = errors.New("backup from a previous edit is present")

	// ErrCleanupFailed is returned when the file was written but its backup could
	// not be removed.
	ErrCleanupFailed = errors.New("backup cleanup failed")
)

// EditError describes a failed editor operation.
type EditError struct {
	Op   string
	Path string
	Key  string
	Err  error
}

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s [%s]: %v", e.Op, e.Path, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *EditError) Unwrap() error {
	return e.Err
}
