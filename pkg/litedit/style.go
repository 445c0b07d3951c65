// SPDX-License-Identifier: MPL-2.0

package litedit

import (
	"bytes"
	"errors"
	"io"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/confreg/confreg/pkg/literal"
)

// DefaultSeparator is used when the literal has too few items to sniff one.
const DefaultSeparator = ",\n\t\t"

var (
	slashComment = regexp.MustCompile(`//[^\n]*`)
	hashComment  = regexp.MustCompile(`#[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?(?:\*/|$)`)
)

// Style is the quoting and separator convention of one literal.
type Style struct {
	Quote     byte
	Separator string
}

// StyleSniffer infers a Style from the text of a literal.
type StyleSniffer struct {
	Dialect          Dialect
	DefaultSeparator string
	DefaultQuote     byte
	Logger           *log.Logger
}

// QuoteStyle returns '"' when the literal holds strictly more double quotes than
// single quotes, '\'' when it holds more single quotes, and the default quote
// on a tie.
func (s StyleSniffer) QuoteStyle(buf []byte, b Bounds) byte {
	if s.Dialect.Quote != 0 {
		return s.Dialect.Quote
	}
	text := buf[b.Start : b.End+1]
	dq, sq := bytes.Count(text, []byte{'"'}), bytes.Count(text, []byte{'\''})
	switch {
	case dq > sq:
		return '"'
	case sq > dq:
		return '\''
	case s.DefaultQuote != 0:
		return s.DefaultQuote
	default:
		return '\''
	}
}

// Separator returns the text found between the second-to-last item and the
// last one, with comments stripped. When that cannot be read, as in lists of
// Foo::class constants or with a single item, it repeats the line break and
// indentation of the last item. It falls back to the default separator when
// the literal cannot be evaluated or keeps its items on the key's line.
func (s StyleSniffer) Separator(buf []byte, key string, b Bounds) string {
	def := s.DefaultSeparator
	if def == "" {
		def = DefaultSeparator
	}

	items, err := s.Dialect.Evaluator.Evaluate(buf, key)
	if err != nil {
		s.logger().Warn("using default separator", "key", key, "err", errors.Join(ErrLoadFailure, err))
		return def
	}
	if len(items) == 0 {
		return def
	}
	fallback := s.lineSeparator(buf, items[len(items)-1], b, def)
	if len(items) < 2 {
		return fallback
	}

	prev := items[len(items)-2].Value
	after := s.findValue(buf, prev, b)
	if after < 0 {
		return fallback
	}
	comma := bytes.IndexByte(buf[after:b.End], ',')
	if comma < 0 {
		return fallback
	}
	comma += after
	quote := bytes.IndexAny(buf[comma:b.End], `'"`)
	if quote < 0 {
		return fallback
	}

	sep := buf[comma : comma+quote]
	sep = blockComment.ReplaceAll(sep, nil)
	sep = slashComment.ReplaceAll(sep, nil)
	if s.Dialect.HashComments {
		sep = hashComment.ReplaceAll(sep, nil)
	}
	return string(sep)
}

// lineSeparator builds ",\n<indent>" from the line holding last. It returns
// def when last shares a line with the key, is not indented, or is not found.
func (s StyleSniffer) lineSeparator(buf []byte, last literal.Item, b Bounds, def string) string {
	needle := last.Value
	if last.Keyed {
		needle = last.Key
	}
	end := s.findValue(buf, needle, b)
	if end < 0 {
		return def
	}
	nl := bytes.LastIndexByte(buf[:end], '\n')
	if nl < b.KeyEnd {
		return def
	}
	line := buf[nl+1 : end]
	indent := line[:len(line)-len(bytes.TrimLeft(line, " \t"))]
	if len(indent) == 0 {
		return def
	}
	eol := "\n"
	if nl > 0 && buf[nl-1] == '\r' {
		eol = "\r\n"
	}
	return "," + eol + string(indent)
}

// Profile combines QuoteStyle and Separator.
func (s StyleSniffer) Profile(buf []byte, key string, b Bounds) Style {
	return Style{Quote: s.QuoteStyle(buf, b), Separator: s.Separator(buf, key, b)}
}

// findValue returns the offset just past the first uncommented occurrence of
// value after the key token, trying the quoted forms before the raw text.
func (s StyleSniffer) findValue(buf []byte, value string, b Bounds) int {
	cs := s.Dialect.scanner()
	escaped := escapeBackslashes(value)
	needles := []string{"'" + value + "'", `"` + value + `"`, `"` + escaped + `"`, value}
	for _, needle := range needles {
		from := b.KeyEnd
		for from < b.End {
			i := bytes.Index(buf[from:b.End], []byte(needle))
			if i < 0 {
				break
			}
			i += from
			if !cs.InComment(buf, i) {
				return i + len(needle)
			}
			from = i + 1
		}
	}
	return -1
}

func (s StyleSniffer) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard)
	}
	return s.Logger
}
