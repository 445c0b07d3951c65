// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/confreg/confreg/internal/config"
	"github.com/confreg/confreg/internal/discovery"
	"github.com/confreg/confreg/internal/issue"
	"github.com/confreg/confreg/internal/registrar"
	"github.com/confreg/confreg/pkg/litedit"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration, discovery and the filesystem
	// through it.
	App struct {
		Config    ConfigProvider
		Discovery DiscoveryService
		Fs        afero.Fs
		stdout    io.Writer
		stderr    io.Writer
		flags     globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		Discovery DiscoveryService
		Fs        afero.Fs
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// DiscoveryService inspects an installed package.
	DiscoveryService interface {
		Discover(ctx context.Context, fsys afero.Fs, opts discovery.Options) (*discovery.Result, error)
	}

	discoveryFunc func(ctx context.Context, fsys afero.Fs, opts discovery.Options) (*discovery.Result, error)

	globalFlags struct {
		verbose    bool
		configPath string
		file       string
		dir        string
	}

	// session is the per-invocation state derived from flags and configuration.
	session struct {
		cfg       *config.Config
		logger    *log.Logger
		verbose   bool
		root      string
		target    string
		editor    *litedit.Editor
		registrar *registrar.Registrar
	}
)

// Discover implements DiscoveryService.
func (f discoveryFunc) Discover(ctx context.Context, fsys afero.Fs, opts discovery.Options) (*discovery.Result, error) {
	return f(ctx, fsys, opts)
}

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		Discovery: deps.Discovery,
		Fs:        deps.Fs,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Discovery == nil {
		app.Discovery = discoveryFunc(discovery.Discover)
	}
	if app.Fs == nil {
		app.Fs = afero.NewOsFs()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (a *App) projectRoot() (string, error) {
	dir := a.flags.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(dir)
}

func (a *App) loadConfig(ctx context.Context, root string) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		WorkDir:        root,
		Fs:             a.Fs,
	})
}

func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "confreg"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// newSession loads configuration and prepares the editor for the target file.
func (a *App) newSession(ctx context.Context, dryRun bool) (*session, error) {
	root, err := a.projectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := a.loadConfig(ctx, root)
	if err != nil {
		return nil, err
	}

	verbose := a.flags.verbose || cfg.UI.Verbose
	logger := a.newLogger(verbose)

	target := a.flags.file
	if target == "" {
		target = cfg.Target.Path
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	if _, err := a.Fs.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, issue.NewErrorContext().
				WithOperation("open target file").
				WithResource(target).
				WithSuggestion("Run confreg from the project root or pass --dir").
				WithSuggestion("Use --file or target.path in the configuration to point at the file").
				WithIssue(issue.FileNotFoundId).
				Wrap(err).
				BuildError()
		}
		return nil, err
	}
	logger.Debug("session", "root", root, "target", target, "dry_run", dryRun)

	editor := litedit.New(target,
		litedit.WithFs(a.Fs),
		litedit.WithDefaultSeparator(cfg.Style.DefaultSeparator),
		litedit.WithDefaultQuote(cfg.Style.Quote()),
		litedit.WithLogger(logger),
		litedit.WithDryRun(dryRun),
	)
	reg := registrar.New(editor,
		registrar.WithKeys(cfg.Target.ProvidersKey, cfg.Target.AliasesKey),
		registrar.WithLogger(logger),
	)
	return &session{
		cfg:       cfg,
		logger:    logger,
		verbose:   verbose,
		root:      root,
		target:    target,
		editor:    editor,
		registrar: reg,
	}, nil
}

// requireNoBackup refuses to mutate a file whose previous edit did not finish.
func (s *session) requireNoBackup() error {
	pending, err := s.editor.Guard().Pending(s.target)
	if err != nil {
		return err
	}
	if !pending {
		return nil
	}
	return issue.NewErrorContext().
		WithOperation("edit").
		WithResource(s.target).
		WithSuggestion("Run 'confreg recover' to inspect the backup").
		WithSuggestion("Use 'confreg recover --restore' or 'confreg recover --discard' to resolve it").
		WithIssue(issue.BackupPresentId).
		Wrap(fmt.Errorf("%w: %s", litedit.ErrBackupPresent, litedit.BackupPath(s.target))).
		BuildError()
}
