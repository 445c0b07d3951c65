// SPDX-License-Identifier: MPL-2.0

// Package registrar applies discovery results to the target file.
package registrar

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/confreg/confreg/internal/discovery"
	"github.com/confreg/confreg/pkg/litedit"
	"github.com/confreg/confreg/pkg/literal"
)

// Outcome is what happened to one discovered item.
type Outcome uint8

const (
	// Added means the item was appended.
	Added Outcome = iota + 1
	// Skipped means an equal item was already live.
	Skipped
	// Replaced means a live entry under the same alias was disabled and the
	// new one appended.
	Replaced
)

// Kind tells providers and aliases apart in a report.
type Kind uint8

const (
	// Provider is a service provider class.
	Provider Kind = iota + 1
	// Alias is a facade alias.
	Alias
)

type (
	// Registrar adds discovered items to the providers and aliases literals.
	Registrar struct {
		editor       *litedit.Editor
		providersKey string
		aliasesKey   string
		logger       *log.Logger
	}

	// Change records the outcome for one item.
	Change struct {
		Kind    Kind
		Item    literal.Item
		Outcome Outcome
	}

	// Report lists changes in the order they were applied.
	Report struct {
		Changes []Change
	}

	// Option configures a Registrar.
	Option func(*Registrar)
)

// WithKeys overrides the literal keys, "providers" and "aliases" by default.
func WithKeys(providersKey, aliasesKey string) Option {
	return func(r *Registrar) {
		r.providersKey = providersKey
		r.aliasesKey = aliasesKey
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Registrar) { r.logger = l }
}

// New returns a registrar writing through editor.
func New(editor *litedit.Editor, opts ...Option) *Registrar {
	r := &Registrar{editor: editor, providersKey: "providers", aliasesKey: "aliases"}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Skipped:
		return "already present"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == Alias {
		return "alias"
	}
	return "provider"
}

// Count returns the number of changes with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, c := range r.Changes {
		if c.Outcome == o {
			n++
		}
	}
	return n
}

// Changed reports whether any item was added or replaced.
func (r *Report) Changed() bool {
	return r.Count(Added)+r.Count(Replaced) > 0
}

// Register adds every provider and alias of res. It stops at the first
// failure and returns the report of what was applied so far; each applied
// item was written on its own.
func (r *Registrar) Register(ctx context.Context, res *discovery.Result) (*Report, error) {
	report := &Report{}
	seen := make(map[string]bool)

	for _, p := range res.Providers {
		if seen["p:"+p.Value] {
			continue
		}
		seen["p:"+p.Value] = true
		if err := ctx.Err(); err != nil {
			return report, err
		}
		c, err := r.AddProvider(p.Value)
		if err != nil {
			return report, err
		}
		report.Changes = append(report.Changes, c)
	}

	for _, a := range res.Aliases {
		if seen["a:"+a.Key] {
			continue
		}
		seen["a:"+a.Key] = true
		if err := ctx.Err(); err != nil {
			return report, err
		}
		c, err := r.AddAlias(a.Key, a.Value)
		if err != nil {
			return report, err
		}
		report.Changes = append(report.Changes, c)
	}
	return report, nil
}

// AddProvider adds one provider class.
func (r *Registrar) AddProvider(class string) (Change, error) {
	c := Change{Kind: Provider, Item: literal.Item{Value: class}}
	changed, err := r.editor.AddItem(r.providersKey, class)
	if err != nil {
		return c, err
	}
	c.Outcome = Skipped
	if changed {
		c.Outcome = Added
	}
	r.logger.Debug("provider", "class", class, "outcome", c.Outcome)
	return c, nil
}

// AddAlias maps alias to facade, replacing a different live mapping.
func (r *Registrar) AddAlias(alias, facade string) (Change, error) {
	c := Change{Kind: Alias, Item: literal.Item{Key: alias, Value: facade, Keyed: true}}

	var existed bool
	items, err := r.editor.Items(r.aliasesKey)
	switch {
	case err == nil:
		_, existed = literal.Lookup(items, alias)
	case errors.Is(err, litedit.ErrLoadFailure):
		r.logger.Warn("could not read current aliases", "err", err)
	default:
		return c, err
	}

	changed, err := r.editor.AddKeyedItem(r.aliasesKey, alias, facade)
	if err != nil {
		return c, err
	}
	switch {
	case !changed:
		c.Outcome = Skipped
	case existed:
		c.Outcome = Replaced
	default:
		c.Outcome = Added
	}
	r.logger.Debug("alias", "alias", alias, "facade", facade, "outcome", c.Outcome)
	return c, nil
}

// DisableProvider comments out every live entry of class.
func (r *Registrar) DisableProvider(class string) (int, error) {
	return r.editor.DisableItem(class, r.providersKey)
}

// DisableAlias comments out every live entry keyed or valued by alias.
func (r *Registrar) DisableAlias(alias string) (int, error) {
	return r.editor.DisableItem(alias, r.aliasesKey)
}

// List returns the live items of the providers or aliases literal.
func (r *Registrar) List(kind Kind) ([]literal.Item, error) {
	if kind == Alias {
		return r.editor.Items(r.aliasesKey)
	}
	return r.editor.Items(r.providersKey)
}
