// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles CUE documents against embedded schemas and decodes
// them into Go values.
//
// It backs three readers in confreg: the tool's own configuration file, the
// provides.cue manifests shipped by packages, and the CUE flavour of editable
// registry files.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Config](schema, data, "#Config",
//	    cueutil.WithFilename(path), cueutil.WithConcrete(false))
//
// Errors carry the offending field as a JSON-style path, for example
// "discovery.exclude[1]: conflicting values".
package cueutil
