// SPDX-License-Identifier: MPL-2.0

package litedit

import (
	"bytes"
	"slices"
)

// DisableItem comments out every live entry of the literal of key whose key or
// value is itemKey and returns how many entries it disabled. Entries that are
// already commented out are left alone, so calling it twice is harmless.
func (e *Editor) DisableItem(itemKey, key string) (int, error) {
	buf, err := e.read("disable", key)
	if err != nil {
		return 0, err
	}
	b, err := e.dialect.Locate(buf, key)
	if err != nil {
		return 0, e.fail("disable", key, err)
	}

	out, n := e.disableIn(buf, b, itemKey)
	if n == 0 {
		e.logger.Debug("nothing to disable", "key", key, "item", itemKey)
		return 0, nil
	}

	if err := e.write("disable", key, out); err != nil {
		return 0, err
	}
	e.logger.Info("disabled entries", "path", e.path, "key", key, "item", itemKey, "count", n)
	return n, nil
}

// disableIn returns a copy of buf with every live entry for itemKey inside b
// commented out, and the number of entries disabled.
func (e *Editor) disableIn(buf []byte, b Bounds, itemKey string) ([]byte, int) {
	// Entries as [start, end) pairs. A match inside an entry already taken
	// (its value after its key) is not a new entry.
	cs := e.dialect.scanner()
	var entries [][2]int
	for _, span := range tokenSpans(e.dialect.itemPattern(itemKey), buf, b.KeyEnd, b.End) {
		if cs.InComment(buf, span[0]) {
			continue
		}
		if n := len(entries); n > 0 && span[0] < entries[n-1][1] {
			continue
		}
		entries = append(entries, [2]int{span[0], e.dialect.entryEnd(buf, span[1], b.End)})
	}
	if len(entries) == 0 {
		return buf, 0
	}

	out := slices.Clone(buf)
	for _, entry := range slices.Backward(entries) {
		out = e.dialect.commentOut(out, entry[0], entry[1])
	}
	return out, len(entries)
}

// entryEnd returns the offset just past the entry containing from: past its
// trailing comma, or past its last non-space character when it has none.
// Commas nested in brackets or strings do not end the entry.
func (d Dialect) entryEnd(buf []byte, from, limit int) int {
	cs := d.scanner()
	depth := 0
	last := from
	for i := from; i < limit && i < len(buf); i++ {
		c := buf[i]
		if isSpace(c) || cs.InComment(buf, i) {
			continue
		}
		switch c {
		case '\'', '"':
			i = skipString(buf, i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return last
			}
		case ',':
			if depth == 0 {
				return i + 1
			}
		}
		last = i + 1
	}
	return last
}

// commentOut turns buf[start:end] into a comment. The closing side is inserted
// first so that start stays valid.
func (d Dialect) commentOut(buf []byte, start, end int) []byte {
	if d.BlockComments {
		buf = slices.Insert(buf, end, blockClose...)
		return slices.Insert(buf, start, blockOpen...)
	}

	// A line comment swallows the rest of the line, so anything after the entry
	// moves to a line of its own.
	rest := buf[end:]
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		buf = slices.Insert(buf, end, '\n')
	}
	return slices.Insert(buf, start, []byte("// ")...)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
