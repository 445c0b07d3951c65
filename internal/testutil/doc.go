// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers: self-restoring environment overrides,
// afero fixtures and a filesystem wrapper that fails selected operations.
package testutil
