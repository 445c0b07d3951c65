// SPDX-License-Identifier: MPL-2.0

// Package config loads confreg settings with Viper, using CUE as the file format.
//
// The first file found wins: the --config flag, then config.cue in the user
// configuration directory (e.g. ~/.config/confreg/config.cue), then confreg.cue
// in the working directory. Files are validated against the embedded
// config_schema.cue before their values are merged over the defaults.
// CONFREG_* environment variables override both, e.g. CONFREG_TARGET_PATH.
package config
