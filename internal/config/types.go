// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidQuote is returned when the default quote is not ' or ".
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrInvalidPattern is returned when a discovery exclude glob does not parse.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
	// ErrEmptyField is returned when a required string field is blank.
	ErrEmptyField = errors.New("empty field")
)

type (
	// Config holds the application configuration.
	Config struct {
		Target    TargetConfig    `json:"target" mapstructure:"target"`
		Style     StyleConfig     `json:"style" mapstructure:"style"`
		Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// TargetConfig names the edited file and the keys of its literals.
	TargetConfig struct {
		// Path is relative to the project root unless absolute.
		Path         string `json:"path" mapstructure:"path"`
		ProvidersKey string `json:"providers_key" mapstructure:"providers_key"`
		AliasesKey   string `json:"aliases_key" mapstructure:"aliases_key"`
	}

	// StyleConfig holds fallbacks for style inference.
	StyleConfig struct {
		DefaultQuote     string `json:"default_quote" mapstructure:"default_quote"`
		DefaultSeparator string `json:"default_separator" mapstructure:"default_separator"`
	}

	// DiscoveryConfig controls how installed packages are inspected.
	DiscoveryConfig struct {
		VendorDir     string   `json:"vendor_dir" mapstructure:"vendor_dir"`
		ProviderBases []string `json:"provider_bases" mapstructure:"provider_bases"`
		FacadeBases   []string `json:"facade_bases" mapstructure:"facade_bases"`
		// Exclude holds doublestar globs relative to the package root.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// FieldError reports a problem with one configuration field.
	FieldError struct {
		Field string
		Value string
		Err   error
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			Path:         "config/app.php",
			ProvidersKey: "providers",
			AliasesKey:   "aliases",
		},
		Style: StyleConfig{
			DefaultQuote:     "'",
			DefaultSeparator: ",\n\t\t",
		},
		Discovery: DiscoveryConfig{
			VendorDir:     "vendor",
			ProviderBases: []string{`Illuminate\Support\ServiceProvider`},
			FacadeBases:   []string{`Illuminate\Support\Facades\Facade`},
			Exclude:       []string{"tests/**", "test/**"},
		},
	}
}

// Quote returns the default quote as a byte.
func (s StyleConfig) Quote() byte {
	if s.DefaultQuote == "" {
		return '\''
	}
	return s.DefaultQuote[0]
}

// Validate checks constraints on the decoded configuration. CUE already
// rejects most malformed files; this also covers values set through the
// environment.
func (c *Config) Validate() error {
	var errs []error
	required := []struct{ field, value string }{
		{"target.path", c.Target.Path},
		{"target.providers_key", c.Target.ProvidersKey},
		{"target.aliases_key", c.Target.AliasesKey},
		{"discovery.vendor_dir", c.Discovery.VendorDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, &FieldError{Field: r.field, Value: r.value, Err: ErrEmptyField})
		}
	}
	if q := c.Style.DefaultQuote; q != "'" && q != `"` {
		errs = append(errs, &FieldError{Field: "style.default_quote", Value: q, Err: ErrInvalidQuote})
	}
	for i, p := range c.Discovery.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, &FieldError{Field: fmt.Sprintf("discovery.exclude[%d]", i), Value: p, Err: ErrInvalidPattern})
		}
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface for FieldError.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error { return e.Err }
