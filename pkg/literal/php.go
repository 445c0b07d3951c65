// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"fmt"
	"strings"
)

type (
	// PHPEvaluator evaluates array literals in PHP files of the form
	// `<?php return [ 'key' => [ ... ], ... ];`.
	PHPEvaluator struct{}

	phpValueKind uint8

	phpValue struct {
		kind    phpValueKind
		text    string
		entries []phpEntry
	}

	phpEntry struct {
		key   *phpValue
		value phpValue
	}

	phpParser struct {
		src  []byte
		toks []token
		pos  int
	}
)

const (
	phpString phpValueKind = iota
	phpClass
	phpArray
	phpExpr
)

// Evaluate implements Evaluator.
func (PHPEvaluator) Evaluate(src []byte, key string) ([]Item, error) {
	root, err := parsePHPReturn(src)
	if err != nil {
		return nil, err
	}
	if root.kind != phpArray {
		return nil, fmt.Errorf("returned value: %w", ErrNotArray)
	}

	v, ok := findPHPKey(root, key)
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrKeyMissing)
	}
	if v.kind != phpArray {
		return nil, fmt.Errorf("%q: %w", key, ErrNotArray)
	}

	items := make([]Item, 0, len(v.entries))
	for _, e := range v.entries {
		it := Item{Value: e.value.String()}
		if e.key != nil {
			it.Key = e.key.String()
			it.Keyed = true
		}
		items = append(items, it)
	}
	return items, nil
}

// String returns the evaluated text of a value: decoded strings, resolved class
// names, and trimmed source text for everything else.
func (v phpValue) String() string {
	return v.text
}

func parsePHPReturn(src []byte) (phpValue, error) {
	toks, err := lexPHP(src)
	if err != nil {
		return phpValue{}, err
	}
	p := &phpParser{src: src, toks: toks}
	for ; p.peek().kind != tokEOF; p.pos++ {
		if t := p.peek(); t.kind == tokIdent && strings.EqualFold(t.val, "return") {
			p.pos++
			return p.parseExpr()
		}
	}
	return phpValue{}, &SyntaxError{Offset: len(src), Msg: "no return statement"}
}

// findPHPKey looks for key among the entries of arr, preferring the last match on the
// current level and descending depth-first when the level has none.
func findPHPKey(arr phpValue, key string) (phpValue, bool) {
	var (
		found phpValue
		ok    bool
	)
	for _, e := range arr.entries {
		if e.key != nil && e.key.kind != phpExpr && e.key.text == key {
			found, ok = e.value, true
		}
	}
	if ok {
		return found, true
	}
	for _, e := range arr.entries {
		if e.value.kind == phpArray {
			if v, ok := findPHPKey(e.value, key); ok {
				return v, true
			}
		}
	}
	return phpValue{}, false
}

func (p *phpParser) peek() token {
	return p.toks[p.pos]
}

func (p *phpParser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *phpParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *phpParser) isPunct(t token, s string) bool {
	return t.kind == tokPunct && t.val == s
}

func (p *phpParser) atExprEnd() bool {
	t := p.peek()
	if t.kind == tokEOF {
		return true
	}
	if t.kind != tokPunct {
		return false
	}
	switch t.val {
	case ",", ")", "]", "}", ";", "=>":
		return true
	}
	return false
}

// parseExpr parses a single literal when the expression is one, and falls back to
// capturing the source text of compound expressions such as env('X', 1) or a.b.
func (p *phpParser) parseExpr() (phpValue, error) {
	start := p.peek().start
	v, err := p.parsePrimary()
	if err != nil {
		return phpValue{}, err
	}
	if p.atExprEnd() {
		return v, nil
	}
	for !p.atExprEnd() {
		t := p.peek()
		if t.kind == tokPunct && (t.val == "(" || t.val == "[" || t.val == "{") {
			if err := p.skipBalanced(); err != nil {
				return phpValue{}, err
			}
			continue
		}
		p.next()
	}
	return p.exprFrom(start), nil
}

func (p *phpParser) exprFrom(start int) phpValue {
	end := p.toks[p.pos-1].end
	return phpValue{kind: phpExpr, text: strings.TrimSpace(string(p.src[start:end]))}
}

func (p *phpParser) parsePrimary() (phpValue, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		return phpValue{kind: phpString, text: t.val}, nil
	case tokNumber, tokVariable:
		p.next()
		return phpValue{kind: phpExpr, text: t.val}, nil
	case tokIdent:
		return p.parseIdent()
	case tokPunct:
		switch t.val {
		case "[":
			p.next()
			return p.parseArray(t.start, "]")
		case "(":
			if err := p.skipBalanced(); err != nil {
				return phpValue{}, err
			}
			return p.exprFrom(t.start), nil
		case "-", "+", "!", "@", "~", "&":
			p.next()
			if _, err := p.parsePrimary(); err != nil {
				return phpValue{}, err
			}
			return p.exprFrom(t.start), nil
		}
	case tokEOF:
		return phpValue{}, &SyntaxError{Offset: t.start, Msg: "unexpected end of file"}
	}
	return phpValue{}, &SyntaxError{Offset: t.start, Msg: fmt.Sprintf("unexpected %q", t.val)}
}

func (p *phpParser) parseIdent() (phpValue, error) {
	t := p.next()
	switch {
	case strings.EqualFold(t.val, "array") && p.isPunct(p.peek(), "("):
		p.next()
		return p.parseArray(t.start, ")")
	case p.isPunct(p.peek(), "::") && p.peekAt(1).kind == tokIdent && strings.EqualFold(p.peekAt(1).val, "class"):
		p.next()
		p.next()
		return phpValue{kind: phpClass, text: strings.TrimPrefix(t.val, `\`)}, nil
	case p.isPunct(p.peek(), "("):
		if err := p.skipBalanced(); err != nil {
			return phpValue{}, err
		}
		return p.exprFrom(t.start), nil
	}
	return phpValue{kind: phpExpr, text: t.val}, nil
}

func (p *phpParser) parseArray(start int, closer string) (phpValue, error) {
	var entries []phpEntry
	for {
		t := p.peek()
		if p.isPunct(t, closer) {
			p.next()
			break
		}
		if t.kind == tokEOF {
			return phpValue{}, &SyntaxError{Offset: start, Msg: "unterminated array literal"}
		}
		if p.isPunct(t, "...") {
			p.next()
		}

		v, err := p.parseExpr()
		if err != nil {
			return phpValue{}, err
		}
		entry := phpEntry{value: v}
		if p.isPunct(p.peek(), "=>") {
			p.next()
			val, err := p.parseExpr()
			if err != nil {
				return phpValue{}, err
			}
			key := v
			entry = phpEntry{key: &key, value: val}
		}
		entries = append(entries, entry)

		switch next := p.peek(); {
		case p.isPunct(next, ","):
			p.next()
		case p.isPunct(next, closer):
		default:
			return phpValue{}, &SyntaxError{Offset: next.start, Msg: fmt.Sprintf("expected , or %s in array literal", closer)}
		}
	}
	end := p.toks[p.pos-1].end
	return phpValue{kind: phpArray, text: string(p.src[start:end]), entries: entries}, nil
}

// skipBalanced consumes an opening bracket and everything up to its matching closer.
func (p *phpParser) skipBalanced() error {
	open := p.next()
	var stack []string
	stack = append(stack, closerFor(open.val))
	for len(stack) > 0 {
		t := p.next()
		if t.kind == tokEOF {
			return &SyntaxError{Offset: open.start, Msg: fmt.Sprintf("unbalanced %q", open.val)}
		}
		if t.kind != tokPunct {
			continue
		}
		switch t.val {
		case "(", "[", "{":
			stack = append(stack, closerFor(t.val))
		case ")", "]", "}":
			if stack[len(stack)-1] != t.val {
				return &SyntaxError{Offset: t.start, Msg: fmt.Sprintf("unexpected %q", t.val)}
			}
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}

func closerFor(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	default:
		return "}"
	}
}
