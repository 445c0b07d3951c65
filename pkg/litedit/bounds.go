// SPDX-License-Identifier: MPL-2.0

package litedit

import "fmt"

// Bounds is the byte range of a key's literal.
type Bounds struct {
	// Start is the offset of the key token.
	Start int
	// KeyEnd is the offset just past the key token.
	KeyEnd int
	// Open is the offset of the literal's opening bracket, or -1 when none was
	// seen before End.
	Open int
	// End is the offset of the closing bracket (inclusive).
	End int
}

// Locate finds the literal introduced by the first occurrence of key.
//
// The end is the first closing bracket at nesting depth one or less, so
// bracket pairs inside items such as env('X') are stepped over. Brackets in
// comments and in quoted strings do not count.
func (d Dialect) Locate(buf []byte, key string) (Bounds, error) {
	spans := tokenSpans(d.keyPattern(key), buf, 0, len(buf))
	if len(spans) == 0 {
		return Bounds{}, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}

	cs := d.scanner()
	b := Bounds{Start: spans[0][0], KeyEnd: spans[0][1], Open: -1, End: -1}
	depth := 0
	for i := b.KeyEnd; i < len(buf); i++ {
		c := buf[i]
		switch c {
		case '\'', '"', '(', '[', '{', ')', ']', '}':
		default:
			continue
		}
		if cs.InComment(buf, i) {
			continue
		}
		switch c {
		case '\'', '"':
			i = skipString(buf, i) - 1
		case '(', '[', '{':
			if depth == 0 {
				b.Open = i
			}
			depth++
		default:
			if depth <= 1 {
				b.End = i
				return b, nil
			}
			depth--
		}
	}
	return Bounds{}, fmt.Errorf("%q: %w", key, ErrUnterminatedLiteral)
}
