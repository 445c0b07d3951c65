// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/confreg/confreg/pkg/literal"
)

const composerFile = "composer.json"

// ErrInvalidComposer is returned when composer.json is not valid JSON.
var ErrInvalidComposer = errors.New("invalid composer.json")

type (
	// composer is a read-only view of a package's composer.json.
	composer struct {
		doc gjson.Result
	}

	// autoloadRule maps a namespace prefix to directories or files, relative
	// to the package root.
	autoloadRule struct {
		kind      string
		namespace string
		paths     []string
	}
)

func readComposer(fsys afero.Fs, dir string) (*composer, error) {
	path := filepath.Join(dir, composerFile)
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidComposer)
	}
	return &composer{doc: gjson.ParseBytes(data)}, nil
}

func (c *composer) laravelExtra() (providers, aliases []literal.Item) {
	extra := c.doc.Get("extra.laravel")
	return jsonProviders(extra.Get("providers")), jsonAliases(extra.Get("aliases"))
}

// autoload returns the psr-4, psr-0, classmap and files rules in that order.
func (c *composer) autoload() []autoloadRule {
	var rules []autoloadRule
	for _, kind := range []string{"psr-4", "psr-0"} {
		c.doc.Get("autoload." + kind).ForEach(func(ns, paths gjson.Result) bool {
			rules = append(rules, autoloadRule{kind: kind, namespace: ns.String(), paths: stringList(paths)})
			return true
		})
	}
	for _, kind := range []string{"classmap", "files"} {
		if paths := stringList(c.doc.Get("autoload." + kind)); len(paths) > 0 {
			rules = append(rules, autoloadRule{kind: kind, paths: paths})
		}
	}
	return rules
}

// namespaces returns the normalized psr-4 and psr-0 prefixes, each ending in
// a backslash.
func (c *composer) namespaces() []string {
	var out []string
	for _, r := range c.autoload() {
		if r.kind != "psr-4" && r.kind != "psr-0" {
			continue
		}
		ns := strings.Trim(r.namespace, `\`)
		if ns == "" {
			continue
		}
		out = append(out, ns+`\`)
	}
	return out
}

// sourceRoots resolves autoload rules to paths relative to the package root.
// A psr-0 rule maps Foo\Bar to <path>/Foo/Bar.
func (c *composer) sourceRoots() []string {
	var roots []string
	for _, r := range c.autoload() {
		for _, p := range r.paths {
			p = strings.TrimSuffix(filepath.ToSlash(p), "/")
			if p == "" {
				p = "."
			}
			if r.kind == "psr-0" {
				nsPath := strings.ReplaceAll(strings.Trim(r.namespace, `\`), `\`, "/")
				p = p + "/" + nsPath
			}
			roots = append(roots, filepath.Clean(filepath.FromSlash(p)))
		}
	}
	return roots
}

// stringList accepts a JSON string or an array of strings.
func stringList(r gjson.Result) []string {
	if r.Type == gjson.String {
		return []string{r.Str}
	}
	var out []string
	for _, v := range r.Array() {
		if v.Type == gjson.String {
			out = append(out, v.Str)
		}
	}
	return out
}
