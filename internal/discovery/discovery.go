// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/confreg/confreg/pkg/literal"
)

var (
	// ErrPackageNotFound is returned when the package directory does not exist.
	ErrPackageNotFound = errors.New("package not installed")
	// ErrNothingToRegister is returned when no strategy found any provider or alias.
	ErrNothingToRegister = errors.New("package offers no service providers or facades")
	// ErrInvalidPackageName is returned for names not of the form vendor/name.
	ErrInvalidPackageName = errors.New("invalid package name")
)

// Source identifies the strategy that produced a Result.
type Source uint8

const (
	// SourceManifest means a provides.* manifest was read.
	SourceManifest Source = iota + 1
	// SourceComposer means composer.json extra.laravel was read.
	SourceComposer
	// SourceScan means PHP sources were scanned for declarations.
	SourceScan
)

var packageNamePattern = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

type (
	// Options configures Discover.
	Options struct {
		// Root is the project root containing the vendor directory.
		Root      string
		VendorDir string
		// Package is the Composer name, e.g. "barryvdh/laravel-debugbar".
		Package string
		// ProviderBases and FacadeBases are fully qualified class names.
		ProviderBases []string
		FacadeBases   []string
		// Exclude holds doublestar globs relative to the package directory.
		Exclude []string
		Logger  *log.Logger
		// Inspector overrides the filesystem-backed source scanner.
		Inspector Inspector
	}

	// Result lists what a package offers. Providers are plain items holding
	// class names; aliases are keyed items mapping alias to facade class.
	Result struct {
		Package string
		Dir     string
		Source  Source
		// Manifest is the file the items were read from, empty for scans.
		Manifest  string
		Providers []literal.Item
		Aliases   []literal.Item
		// Diagnostics holds non-fatal findings in the order they were made.
		Diagnostics []Diagnostic
	}
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceManifest:
		return "manifest"
	case SourceComposer:
		return "composer.json"
	case SourceScan:
		return "source scan"
	default:
		return "unknown"
	}
}

// Empty reports whether the result holds neither providers nor aliases.
func (r *Result) Empty() bool {
	return len(r.Providers) == 0 && len(r.Aliases) == 0
}

// PackageDir returns the install directory of the package described by opts.
func (o Options) PackageDir() string {
	vendor := o.VendorDir
	if vendor == "" {
		vendor = "vendor"
	}
	return filepath.Join(o.Root, vendor, filepath.FromSlash(o.Package))
}

// Discover inspects the installed package described by opts.
func Discover(ctx context.Context, fsys afero.Fs, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if !packageNamePattern.MatchString(opts.Package) {
		return nil, fmt.Errorf("%w: %q (expected vendor/name)", ErrInvalidPackageName, opts.Package)
	}

	dir := opts.PackageDir()
	if ok, err := afero.DirExists(fsys, dir); err != nil || !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrPackageNotFound)
	}

	res := &Result{Package: opts.Package, Dir: dir}

	m, err := readManifest(fsys, dir)
	if err != nil {
		return nil, err
	}
	if m != nil {
		logger.Debug("manifest detected", "path", m.path)
		res.Source, res.Manifest = SourceManifest, m.path
		res.Providers, res.Aliases = m.providers, m.aliases
		if !res.Empty() {
			return res, nil
		}
		res.Diagnostics = append(res.Diagnostics, warning(CodeManifestEmpty, m.path,
			"manifest lists no providers or aliases; trying composer.json", nil))
	}

	c, err := readComposer(fsys, dir)
	if err != nil {
		return nil, err
	}
	if c != nil {
		providers, aliases := c.laravelExtra()
		if len(providers) > 0 || len(aliases) > 0 {
			logger.Debug("using composer.json extra.laravel", "providers", len(providers), "aliases", len(aliases))
			res.Source, res.Manifest = SourceComposer, filepath.Join(dir, composerFile)
			res.Providers, res.Aliases = providers, aliases
			return res, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	insp := opts.Inspector
	var fsInsp *FsInspector
	if insp == nil {
		fsInsp, err = newFsInspector(fsys, dir, c, opts.Exclude)
		if err != nil {
			return nil, err
		}
		insp = fsInsp
	}
	var namespaces []string
	if c != nil {
		namespaces = c.namespaces()
	}
	sc := scanner{
		inspector:     insp,
		namespaces:    namespaces,
		providerBases: opts.ProviderBases,
		facadeBases:   opts.FacadeBases,
		logger:        logger,
	}
	providers, aliases, err := sc.run(ctx)
	if err != nil {
		return nil, err
	}
	if fsInsp != nil {
		res.Diagnostics = append(res.Diagnostics, fsInsp.Diagnostics()...)
	}
	res.Source, res.Manifest = SourceScan, ""
	res.Providers, res.Aliases = providers, aliases
	if res.Empty() {
		return nil, fmt.Errorf("%s: %w", opts.Package, ErrNothingToRegister)
	}
	return res, nil
}
