// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/confreg/confreg/pkg/literal"
)

type (
	// Inspector enumerates and parses the PHP sources of one package.
	Inspector interface {
		// SourceFiles returns the files to inspect, sorted.
		SourceFiles(ctx context.Context) ([]string, error)
		// Declarations returns the classes declared in file.
		Declarations(file string) ([]Declaration, error)
	}

	// Declaration is a class declared in a source file. Names are fully
	// qualified without a leading backslash.
	Declaration struct {
		Name     string
		Extends  string
		Abstract bool
	}

	// FsInspector reads package sources from an afero filesystem.
	FsInspector struct {
		fs          afero.Fs
		dir         string
		roots       []string
		exclude     []string
		diagnostics []Diagnostic
	}

	phpunitConfig struct {
		Suites []struct {
			Directories []string `xml:"directory"`
		} `xml:"testsuites>testsuite"`
	}

	scanner struct {
		inspector     Inspector
		namespaces    []string
		providerBases []string
		facadeBases   []string
		logger        *log.Logger
	}
)

var (
	commentPattern   = regexp.MustCompile(`(?s:/\*.*?\*/)|(?://|#)[^\n]*`)
	namespacePattern = regexp.MustCompile(`(?m)^\s*namespace\s+([\w\\]+)\s*[;{]`)
	usePattern       = regexp.MustCompile(`(?m)^\s*use\s+\\?([\w\\]+)(?:\s+as\s+(\w+))?\s*;`)
	classPattern     = regexp.MustCompile(`(?m)^\s*((?:(?:abstract|final|readonly)\s+)*)class\s+(\w+)(?:\s+extends\s+(\\?[\w\\]+))?`)
)

// newFsInspector returns an inspector over the package in dir. Source roots
// come from the composer.json autoload section; without one the whole package
// is scanned. Paths matching an exclude glob or a phpunit test suite directory
// are skipped.
func newFsInspector(fsys afero.Fs, dir string, c *composer, exclude []string) (*FsInspector, error) {
	roots := []string{"."}
	if c != nil {
		if r := c.sourceRoots(); len(r) > 0 {
			roots = r
		}
	}
	in := &FsInspector{fs: fsys, dir: dir, roots: roots}
	suites, err := in.phpunitSuites()
	if err != nil {
		return nil, err
	}
	in.exclude = slices.Clone(exclude)
	for _, s := range suites {
		in.exclude = append(in.exclude, s, s+"/**")
	}
	return in, nil
}

// Diagnostics returns the non-fatal findings collected so far.
func (in *FsInspector) Diagnostics() []Diagnostic {
	return in.diagnostics
}

// phpunitSuites returns the <testsuite><directory> entries of phpunit.xml, or
// phpunit.xml.dist when the former is absent, as slash-separated relative paths.
func (in *FsInspector) phpunitSuites() ([]string, error) {
	var (
		data []byte
		path string
	)
	for _, name := range []string{"phpunit.xml", "phpunit.xml.dist"} {
		p := filepath.Join(in.dir, name)
		b, err := afero.ReadFile(in.fs, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		data, path = b, p
		break
	}
	if data == nil {
		return nil, nil
	}

	var cfg phpunitConfig
	if err := xml.Unmarshal(data, &cfg); err != nil {
		in.diagnostics = append(in.diagnostics, warning(CodePhpunitParseSkipped, path,
			"phpunit configuration is unreadable; test suites are scanned too", err))
		return nil, nil
	}
	var dirs []string
	for _, s := range cfg.Suites {
		for _, d := range s.Directories {
			d = strings.TrimSpace(filepath.ToSlash(d))
			d = strings.TrimSuffix(strings.TrimPrefix(d, "./"), "/")
			if d != "" && d != "." {
				dirs = append(dirs, d)
			}
		}
	}
	return dirs, nil
}

func (in *FsInspector) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range in.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// SourceFiles implements Inspector.
func (in *FsInspector) SourceFiles(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, root := range in.roots {
		start := filepath.Join(in.dir, root)
		info, err := in.fs.Stat(start)
		if errors.Is(err, fs.ErrNotExist) {
			in.diagnostics = append(in.diagnostics, warning(CodeSourceRootMissing, start,
				"autoload path does not exist", err))
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if rel, _ := filepath.Rel(in.dir, start); !in.excluded(rel) {
				seen[start] = true
			}
			continue
		}

		err = afero.Walk(in.fs, start, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(in.dir, path)
			if err != nil {
				return err
			}
			if info.IsDir() {
				if rel != "." && in.excluded(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".php") && !in.excluded(rel) {
				seen[path] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", start, err)
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	slices.Sort(files)
	return files, nil
}

// Declarations implements Inspector.
func (in *FsInspector) Declarations(file string) ([]Declaration, error) {
	src, err := afero.ReadFile(in.fs, file)
	if err != nil {
		return nil, err
	}
	return ParseDeclarations(src), nil
}

// ParseDeclarations extracts class declarations from PHP source, resolving
// each supertype against the file's namespace and use imports. Interfaces,
// traits and enums are ignored.
func ParseDeclarations(src []byte) []Declaration {
	text := commentPattern.ReplaceAllString(string(src), "")

	var ns string
	if m := namespacePattern.FindStringSubmatch(text); m != nil {
		ns = m[1]
	}
	imports := make(map[string]string)
	for _, m := range usePattern.FindAllStringSubmatch(text, -1) {
		alias := m[2]
		if alias == "" {
			alias = basename(m[1])
		}
		imports[strings.ToLower(alias)] = m[1]
	}

	var decls []Declaration
	for _, m := range classPattern.FindAllStringSubmatch(text, -1) {
		d := Declaration{
			Name:     qualify(ns, m[2]),
			Abstract: strings.Contains(m[1], "abstract"),
		}
		if m[3] != "" {
			d.Extends = resolveName(m[3], ns, imports)
		}
		decls = append(decls, d)
	}
	return decls
}

// resolveName follows PHP name resolution for class references.
func resolveName(name, ns string, imports map[string]string) string {
	if strings.HasPrefix(name, `\`) {
		return strings.TrimPrefix(name, `\`)
	}
	first, rest, qualified := strings.Cut(name, `\`)
	if target, ok := imports[strings.ToLower(first)]; ok {
		if qualified {
			return target + `\` + rest
		}
		return target
	}
	return qualify(ns, name)
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + `\` + name
}

func basename(class string) string {
	if i := strings.LastIndexByte(class, '\\'); i >= 0 {
		return class[i+1:]
	}
	return class
}

// run collects every concrete class in the package namespaces whose ancestry
// reaches a provider or facade base. Ancestry is followed through classes
// declared anywhere in the package.
func (s *scanner) run(ctx context.Context) (providers, aliases []literal.Item, err error) {
	files, err := s.inspector.SourceFiles(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("scanning sources", "files", len(files))

	var decls []Declaration
	parents := make(map[string]string)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		ds, err := s.inspector.Declarations(f)
		if err != nil {
			return nil, nil, fmt.Errorf("inspect %s: %w", f, err)
		}
		for _, d := range ds {
			parents[strings.ToLower(d.Name)] = d.Extends
		}
		decls = append(decls, ds...)
	}

	for _, d := range decls {
		if d.Abstract || !s.inNamespace(d.Name) {
			continue
		}
		switch {
		case s.extends(d.Name, s.providerBases, parents):
			providers = append(providers, literal.Item{Value: d.Name})
		case s.extends(d.Name, s.facadeBases, parents):
			aliases = append(aliases, aliasItem(basename(d.Name), d.Name))
		}
	}
	return providers, aliases, nil
}

func (s *scanner) inNamespace(class string) bool {
	if len(s.namespaces) == 0 {
		return true
	}
	lower := strings.ToLower(class)
	for _, ns := range s.namespaces {
		if strings.HasPrefix(lower, strings.ToLower(ns)) {
			return true
		}
	}
	return false
}

// extends reports whether class is a strict descendant of one of bases.
func (s *scanner) extends(class string, bases []string, parents map[string]string) bool {
	seen := make(map[string]bool)
	cur := strings.ToLower(class)
	for !seen[cur] {
		seen[cur] = true
		parent, ok := parents[cur]
		if !ok || parent == "" {
			return false
		}
		for _, b := range bases {
			if strings.EqualFold(parent, strings.TrimPrefix(b, `\`)) {
				return true
			}
		}
		cur = strings.ToLower(parent)
	}
	return false
}
