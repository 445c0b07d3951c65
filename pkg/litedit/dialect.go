// SPDX-License-Identifier: MPL-2.0

package litedit

import (
	"regexp"
	"strings"

	"github.com/confreg/confreg/pkg/literal"
)

// Dialect describes the surface syntax of an editable file.
type Dialect struct {
	Name string

	// PairOperator joins a key and a value in keyed entries.
	PairOperator string

	// HashComments enables '#' line comments.
	HashComments bool

	// BlockComments enables /* */ comments. DisableItem wraps entries in a block
	// comment when set and prefixes them with "// " otherwise.
	BlockComments bool

	// Quote forces a quote character. Zero means sniff it from the literal.
	Quote byte

	// BareKeys allows unquoted identifiers as keys (`providers: [...]`).
	BareKeys bool

	// ClassConstants lets items be written as `Foo\Bar::class`.
	ClassConstants bool

	Evaluator literal.Evaluator
}

var (
	// PHP is the dialect of Laravel-style `return [...]` configuration files.
	PHP = Dialect{
		Name:           "php",
		PairOperator:   " => ",
		HashComments:   true,
		BlockComments:  true,
		ClassConstants: true,
		Evaluator:      literal.PHPEvaluator{},
	}

	// CUE is the dialect of CUE registry files.
	CUE = Dialect{
		Name:         "cue",
		PairOperator: ": ",
		Quote:        '"',
		BareKeys:     true,
		Evaluator:    literal.CUEEvaluator{},
	}
)

// DialectFor picks the dialect whose evaluator reads path.
func DialectFor(path string) Dialect {
	d := PHP
	ev := literal.ForPath(path)
	if _, ok := ev.(literal.CUEEvaluator); ok {
		d = CUE
	}
	d.Evaluator = ev
	return d
}

func (d Dialect) scanner() CommentScanner {
	return CommentScanner{HashComments: d.HashComments, BlockComments: d.BlockComments}
}

// keyPattern matches the token that introduces key. Group 1 spans the token.
func (d Dialect) keyPattern(key string) *regexp.Regexp {
	q := regexp.QuoteMeta(key)
	expr := `(['"]` + q + `['"])`
	if d.BareKeys {
		expr += `|(?m:^|[^\w$#"'])(` + q + `)\s*:`
	}
	return regexp.MustCompile(expr)
}

// itemPattern matches an entry whose key or value is item, written raw or with
// escaped backslashes. Group 1 or 2 spans the token.
func (d Dialect) itemPattern(item string) *regexp.Regexp {
	q := regexp.QuoteMeta(item)
	expr := `(['"]` + q + `['"])`
	if escaped := escapeBackslashes(item); escaped != item {
		expr = `(['"](?:` + q + `|` + regexp.QuoteMeta(escaped) + `)['"])`
	}
	switch {
	case d.ClassConstants:
		expr += `|(?m:^|[^\w\\])(\\?` + q + `::class)`
	case d.BareKeys:
		expr += `|(?m:^|[^\w$#"'])(` + q + `)\s*:`
	}
	return regexp.MustCompile(expr)
}

// QuoteString renders s as a string literal using quote q.
func (d Dialect) QuoteString(q byte, s string) string {
	qs := string(q)
	if q != '"' {
		return qs + strings.ReplaceAll(s, qs, `\`+qs) + qs
	}
	s = strings.ReplaceAll(escapeBackslashes(s), `"`, `\"`)
	if d.Name == PHP.Name {
		s = strings.ReplaceAll(s, "$", `\$`)
	}
	return qs + s + qs
}

func escapeBackslashes(s string) string {
	return strings.ReplaceAll(s, `\`, `\\`)
}

// tokenSpans returns the [start, end) offsets of the first non-empty capture
// group of every match of re in buf[from:to].
func tokenSpans(re *regexp.Regexp, buf []byte, from, to int) [][2]int {
	var spans [][2]int
	for _, m := range re.FindAllSubmatchIndex(buf[from:to], -1) {
		for g := 1; 2*g+1 < len(m); g++ {
			if m[2*g] >= 0 {
				spans = append(spans, [2]int{from + m[2*g], from + m[2*g+1]})
				break
			}
		}
	}
	return spans
}
