// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into messages a user can act on.
//
// ActionableError carries the failed operation, the file involved, hints, and
// optionally an Id from the issue catalog whose Markdown guidance is rendered
// with glamour in verbose mode.
package issue
