// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/confreg/confreg/internal/issue"
	"github.com/confreg/confreg/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "confreg"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the working directory.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides, e.g. CONFREG_UI_VERBOSE.
	EnvPrefix = "CONFREG"
)

//go:embed config_schema.cue
var configSchema string

// ErrConfigNotFound is returned when an explicit config path does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ConfigDir returns the confreg configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// UserConfigPath returns the path of the per-user config file.
func UserConfigPath(configDirPath string) (string, error) {
	dir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load is a convenience wrapper around loadWithOptions that also reports the
// file the configuration came from ("" when only defaults apply).
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := resolvePath(fsys, opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(fsys, v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'confreg config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("style.default_quote must be a single or double quote").
			WithSuggestion("Exclude patterns use doublestar syntax, e.g. tests/**").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// resolvePath picks the config file: an explicit path, then the user config
// directory, then the working directory. An empty result means defaults only.
func resolvePath(fsys afero.Fs, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(fsys, opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'confreg config init' to create a default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("%w: %s", ErrConfigNotFound, opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	userPath, err := UserConfigPath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(fsys, userPath) {
		return userPath, nil
	}

	localPath := LocalConfigFileName
	if opts.WorkDir != "" {
		localPath = filepath.Join(opts.WorkDir, LocalConfigFileName)
	}
	if fileExists(fsys, localPath) {
		return localPath, nil
	}
	return "", nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("target.path", defaults.Target.Path)
	v.SetDefault("target.providers_key", defaults.Target.ProvidersKey)
	v.SetDefault("target.aliases_key", defaults.Target.AliasesKey)
	v.SetDefault("style.default_quote", defaults.Style.DefaultQuote)
	v.SetDefault("style.default_separator", defaults.Style.DefaultSeparator)
	v.SetDefault("discovery.vendor_dir", defaults.Discovery.VendorDir)
	v.SetDefault("discovery.provider_bases", defaults.Discovery.ProviderBases)
	v.SetDefault("discovery.facade_bases", defaults.Discovery.FacadeBases)
	v.SetDefault("discovery.exclude", defaults.Discovery.Exclude)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Config decodes to map[string]any rather than a struct so that Viper keeps
// ownership of defaults and env overrides.
func loadCUEIntoViper(fsys afero.Fs, v *viper.Viper, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path. An existing file is
// left untouched unless force is set; the returned bool reports whether a
// file was written.
func WriteDefault(fsys afero.Fs, path string, force bool) (bool, error) {
	if fileExists(fsys, path) && !force {
		return false, nil
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// confreg configuration file\n")
	sb.WriteString("// See 'confreg config --help' for the available options.\n\n")

	sb.WriteString("target: {\n")
	fmt.Fprintf(&sb, "\tpath:          %s\n", strconv.Quote(cfg.Target.Path))
	fmt.Fprintf(&sb, "\tproviders_key: %s\n", strconv.Quote(cfg.Target.ProvidersKey))
	fmt.Fprintf(&sb, "\taliases_key:   %s\n", strconv.Quote(cfg.Target.AliasesKey))
	sb.WriteString("}\n\n")

	sb.WriteString("style: {\n")
	fmt.Fprintf(&sb, "\tdefault_quote:     %s\n", strconv.Quote(cfg.Style.DefaultQuote))
	fmt.Fprintf(&sb, "\tdefault_separator: %s\n", strconv.Quote(cfg.Style.DefaultSeparator))
	sb.WriteString("}\n\n")

	sb.WriteString("discovery: {\n")
	fmt.Fprintf(&sb, "\tvendor_dir: %s\n", strconv.Quote(cfg.Discovery.VendorDir))
	writeCUEList(&sb, "provider_bases", cfg.Discovery.ProviderBases)
	writeCUEList(&sb, "facade_bases", cfg.Discovery.FacadeBases)
	writeCUEList(&sb, "exclude", cfg.Discovery.Exclude)
	sb.WriteString("}\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeCUEList(sb *strings.Builder, name string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(sb, "\t%s: []\n", name)
		return
	}
	fmt.Fprintf(sb, "\t%s: [\n", name)
	for _, val := range values {
		fmt.Fprintf(sb, "\t\t%s,\n", strconv.Quote(val))
	}
	sb.WriteString("\t]\n")
}
