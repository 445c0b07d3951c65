// SPDX-License-Identifier: MPL-2.0

// Package literal evaluates the current value of a named array literal inside a
// configuration source file.
//
// The editor in pkg/litedit works on raw bytes and never needs a full grammar, but it
// still has to know which items a key currently holds: to skip values that are already
// registered, to detect a stale alias mapping, and to sample the separator between the
// last two items. An Evaluator answers that question for one file format.
//
// Two formats are supported:
//
//   - PHP configuration files that `return` an array (PHPEvaluator)
//   - CUE files with top-level fields (CUEEvaluator)
//
// Commented-out entries are invisible to both evaluators, which is what lets the editor
// disable an entry by wrapping it in a block comment.
package literal
