// SPDX-License-Identifier: MPL-2.0

// Package discovery finds the service providers and facade aliases that an
// installed Composer package offers.
//
// Three strategies are tried in order and the first one that yields anything
// wins: a provides.json, provides.toml or provides.cue manifest in the package
// root, the extra.laravel section of composer.json, and finally a scan of the
// package's autoloaded PHP sources for classes extending the configured
// provider and facade base classes.
//
// Problems that do not stop discovery, such as an unreadable phpunit.xml, are
// returned as Diagnostics on the Result for the caller to render.
package discovery
