// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"bytes"
	"strings"
)

type (
	tokenKind uint8

	// token is one lexical unit of a PHP source file. For strings, val holds the
	// decoded contents; for everything else it equals the raw text.
	token struct {
		kind  tokenKind
		val   string
		start int
		end   int
	}

	phpLexer struct {
		src  []byte
		pos  int
		toks []token
	}
)

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokIdent
	tokVariable
	tokPunct
)

// multi-character punctuators, longest first.
var phpPuncts = []string{"?->", "...", "=>", "::", "->"}

func lexPHP(src []byte) ([]token, error) {
	l := &phpLexer{src: src}
	if i := bytes.Index(src, []byte("<?php")); i >= 0 {
		l.pos = i + len("<?php")
	}
	if err := l.run(); err != nil {
		return nil, err
	}
	l.toks = append(l.toks, token{kind: tokEOF, start: len(src), end: len(src)})
	return l.toks, nil
}

func (l *phpLexer) run() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case l.hasPrefix("?>"):
			return nil
		case c == '#' || l.hasPrefix("//"):
			l.skipLineComment()
		case l.hasPrefix("/*"):
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		case c == '\'':
			if err := l.lexSingleQuoted(); err != nil {
				return err
			}
		case c == '"':
			if err := l.lexDoubleQuoted(); err != nil {
				return err
			}
		case l.hasPrefix("<<<"):
			if err := l.lexHeredoc(); err != nil {
				return err
			}
		case isDigit(c):
			l.lexWhile(tokNumber, isNumberByte)
		case c == '$':
			start := l.pos
			l.pos++
			for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
				l.pos++
			}
			l.emit(tokVariable, string(l.src[start:l.pos]), start)
		case isIdentStart(c):
			l.lexWhile(tokIdent, isIdentByte)
		default:
			l.lexPunct()
		}
	}
	return nil
}

func (l *phpLexer) hasPrefix(s string) bool {
	return bytes.HasPrefix(l.src[l.pos:], []byte(s))
}

func (l *phpLexer) emit(kind tokenKind, val string, start int) {
	l.toks = append(l.toks, token{kind: kind, val: val, start: start, end: l.pos})
}

func (l *phpLexer) lexWhile(kind tokenKind, accept func(byte) bool) {
	start := l.pos
	for l.pos < len(l.src) && accept(l.src[l.pos]) {
		l.pos++
	}
	l.emit(kind, string(l.src[start:l.pos]), start)
}

func (l *phpLexer) lexPunct() {
	start := l.pos
	for _, p := range phpPuncts {
		if l.hasPrefix(p) {
			l.pos += len(p)
			l.emit(tokPunct, p, start)
			return
		}
	}
	l.pos++
	l.emit(tokPunct, string(l.src[start:l.pos]), start)
}

// skipLineComment stops before the newline or a closing "?>" tag.
func (l *phpLexer) skipLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' && !l.hasPrefix("?>") {
		l.pos++
	}
}

func (l *phpLexer) skipBlockComment() error {
	start := l.pos
	end := bytes.Index(l.src[l.pos+2:], []byte("*/"))
	if end < 0 {
		return &SyntaxError{Offset: start, Msg: "unterminated block comment"}
	}
	l.pos += 2 + end + 2
	return nil
}

func (l *phpLexer) lexSingleQuoted() error {
	start := l.pos
	var sb strings.Builder
	for l.pos++; l.pos < len(l.src); l.pos++ {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '\\' || l.src[l.pos+1] == '\''):
			l.pos++
			sb.WriteByte(l.src[l.pos])
		case c == '\'':
			l.pos++
			l.emit(tokString, sb.String(), start)
			return nil
		default:
			sb.WriteByte(c)
		}
	}
	return &SyntaxError{Offset: start, Msg: "unterminated string"}
}

func (l *phpLexer) lexDoubleQuoted() error {
	start := l.pos
	var sb strings.Builder
	for l.pos++; l.pos < len(l.src); l.pos++ {
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			l.emit(tokString, sb.String(), start)
			return nil
		}
		if c != '\\' || l.pos+1 >= len(l.src) {
			sb.WriteByte(c)
			continue
		}
		l.pos++
		switch next := l.src[l.pos]; next {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'v':
			sb.WriteByte('\v')
		case 'f':
			sb.WriteByte('\f')
		case 'e':
			sb.WriteByte(0x1b)
		case '\\', '$', '"':
			sb.WriteByte(next)
		default:
			sb.WriteByte('\\')
			sb.WriteByte(next)
		}
	}
	return &SyntaxError{Offset: start, Msg: "unterminated string"}
}

// lexHeredoc reads <<<ID, <<<"ID" and <<<'ID' blocks. The body is kept verbatim;
// interpolation is not evaluated.
func (l *phpLexer) lexHeredoc() error {
	start := l.pos
	l.pos += len("<<<")
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	quote := byte(0)
	if l.pos < len(l.src) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"') {
		quote = l.src[l.pos]
		l.pos++
	}
	idStart := l.pos
	for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
		l.pos++
	}
	id := string(l.src[idStart:l.pos])
	if quote != 0 {
		if l.pos >= len(l.src) || l.src[l.pos] != quote {
			return &SyntaxError{Offset: start, Msg: "malformed heredoc label"}
		}
		l.pos++
	}
	nl := bytes.IndexByte(l.src[l.pos:], '\n')
	if id == "" || nl < 0 {
		return &SyntaxError{Offset: start, Msg: "malformed heredoc"}
	}
	l.pos += nl + 1
	bodyStart := l.pos
	for l.pos < len(l.src) {
		lineEnd := bytes.IndexByte(l.src[l.pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(l.src) - l.pos
		}
		line := l.src[l.pos : l.pos+lineEnd]
		trimmed := bytes.TrimLeft(line, " \t")
		if bytes.HasPrefix(trimmed, []byte(id)) && (len(trimmed) == len(id) || !isIdentByte(trimmed[len(id)])) {
			body := strings.TrimSuffix(string(l.src[bodyStart:l.pos]), "\n")
			l.pos += len(line) - len(trimmed) + len(id)
			l.emit(tokString, body, start)
			return nil
		}
		l.pos += lineEnd + 1
	}
	return &SyntaxError{Offset: start, Msg: "unterminated heredoc"}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '.' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '\\' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
