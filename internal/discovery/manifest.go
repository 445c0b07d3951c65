// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/confreg/confreg/pkg/cueutil"
	"github.com/confreg/confreg/pkg/literal"
)

// ErrInvalidManifest is returned when a provides.* file cannot be decoded.
var ErrInvalidManifest = errors.New("invalid manifest")

const manifestSchema = `
#Manifest: close({
	providers?: [...string & !=""]
	aliases?: [...close({alias: string & !="", facade: string & !=""})] | {[string]: string & !=""}
})
`

type (
	manifest struct {
		path      string
		providers []literal.Item
		aliases   []literal.Item
	}

	manifestReader func(data []byte, path string) (*manifest, error)

	cueManifest struct {
		Providers []string `json:"providers"`
	}

	tomlManifest struct {
		Providers []string `toml:"providers"`
		Aliases   any      `toml:"aliases"`
	}
)

var manifestReaders = []struct {
	name string
	read manifestReader
}{
	{"provides.json", readJSONManifest},
	{"provides.toml", readTOMLManifest},
	{"provides.cue", readCUEManifest},
}

// readManifest returns the first manifest present in dir, or nil.
func readManifest(fsys afero.Fs, dir string) (*manifest, error) {
	for _, r := range manifestReaders {
		path := filepath.Join(dir, r.name)
		data, err := afero.ReadFile(fsys, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		m, err := r.read(data, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalidManifest, err)
		}
		m.path = path
		return m, nil
	}
	return nil, nil
}

// readJSONManifest reads provides.json. Hand-written manifests often carry
// unescaped class names such as "Foo\Bar"; when the document is not valid
// JSON every backslash is doubled before reading, so such names come out
// verbatim.
func readJSONManifest(data []byte, _ string) (*manifest, error) {
	if !gjson.ValidBytes(data) {
		data = bytes.ReplaceAll(data, []byte(`\`), []byte(`\\`))
		if !gjson.ValidBytes(data) {
			return nil, errors.New("malformed JSON")
		}
	}
	doc := gjson.ParseBytes(data)
	return &manifest{
		providers: jsonProviders(doc.Get("providers")),
		aliases:   jsonAliases(doc.Get("aliases")),
	}, nil
}

func jsonProviders(r gjson.Result) []literal.Item {
	if !r.IsArray() {
		return nil
	}
	var items []literal.Item
	for _, v := range r.Array() {
		if v.Type == gjson.String && v.Str != "" {
			items = append(items, literal.Item{Value: v.Str})
		}
	}
	return items
}

// jsonAliases accepts a list of {alias, facade} objects or an alias to facade
// object, keeping document order.
func jsonAliases(r gjson.Result) []literal.Item {
	var items []literal.Item
	switch {
	case r.IsArray():
		for _, v := range r.Array() {
			alias, facade := v.Get("alias").String(), v.Get("facade").String()
			if alias != "" && facade != "" {
				items = append(items, aliasItem(alias, facade))
			}
		}
	case r.IsObject():
		r.ForEach(func(k, v gjson.Result) bool {
			if v.Type == gjson.String && k.String() != "" && v.Str != "" {
				items = append(items, aliasItem(k.String(), v.Str))
			}
			return true
		})
	}
	return items
}

func readTOMLManifest(data []byte, _ string) (*manifest, error) {
	var doc tomlManifest
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	m := &manifest{}
	for _, p := range doc.Providers {
		if p != "" {
			m.providers = append(m.providers, literal.Item{Value: p})
		}
	}
	switch a := doc.Aliases.(type) {
	case nil:
	case []any:
		for _, entry := range a {
			t, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("aliases: expected tables, got %T", entry)
			}
			alias, _ := t["alias"].(string)
			facade, _ := t["facade"].(string)
			if alias == "" || facade == "" {
				return nil, errors.New("aliases: each entry needs alias and facade")
			}
			m.aliases = append(m.aliases, aliasItem(alias, facade))
		}
	case map[string]any:
		// TOML tables are unordered once decoded.
		keys := make([]string, 0, len(a))
		for k := range a {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			facade, ok := a[k].(string)
			if !ok || facade == "" {
				return nil, fmt.Errorf("aliases.%s: expected a class name", k)
			}
			m.aliases = append(m.aliases, aliasItem(k, facade))
		}
	default:
		return nil, fmt.Errorf("aliases: unexpected %T", a)
	}
	return m, nil
}

func readCUEManifest(data []byte, path string) (*manifest, error) {
	res, err := cueutil.ParseAndDecode[cueManifest]([]byte(manifestSchema), data, "#Manifest",
		cueutil.WithFilename(filepath.Base(path)), cueutil.WithConcrete(true))
	if err != nil {
		return nil, err
	}
	m := &manifest{}
	for _, p := range res.Value.Providers {
		m.providers = append(m.providers, literal.Item{Value: p})
	}

	aliases := res.Unified.LookupPath(cue.ParsePath("aliases"))
	if !aliases.Exists() {
		return m, nil
	}
	switch aliases.IncompleteKind() {
	case cue.ListKind:
		it, err := aliases.List()
		if err != nil {
			return nil, err
		}
		for it.Next() {
			alias, _ := it.Value().LookupPath(cue.ParsePath("alias")).String()
			facade, _ := it.Value().LookupPath(cue.ParsePath("facade")).String()
			m.aliases = append(m.aliases, aliasItem(alias, facade))
		}
	case cue.StructKind:
		it, err := aliases.Fields()
		if err != nil {
			return nil, err
		}
		for it.Next() {
			facade, _ := it.Value().String()
			m.aliases = append(m.aliases, aliasItem(it.Selector().Unquoted(), facade))
		}
	}
	return m, nil
}

func aliasItem(alias, facade string) literal.Item {
	return literal.Item{Key: alias, Value: facade, Keyed: true}
}
