// SPDX-License-Identifier: MPL-2.0

package litedit

import "bytes"

var (
	blockOpen  = []byte("/*")
	blockClose = []byte("*/")
	lineMarker = []byte("//")
)

// CommentScanner answers whether an offset lies inside a comment.
//
// It scans backwards from the offset on every call, which makes searches that
// query each character quadratic in the file size. Configuration files are
// small enough for this to be fine; a single forward pass that classifies every
// offset would keep the same answers if it ever matters.
//
// The scan is textual: a "//" inside a string literal still starts a comment
// for the rest of that line.
type CommentScanner struct {
	HashComments  bool
	BlockComments bool
}

// InComment reports whether pos is inside a line or block comment. Offset 0 and
// offsets outside buf are never inside a comment.
func (s CommentScanner) InComment(buf []byte, pos int) bool {
	if pos <= 0 || pos >= len(buf) {
		return false
	}

	lineStart := bytes.LastIndexByte(buf[:pos], '\n') + 1
	line := buf[lineStart:pos]
	if bytes.Contains(line, lineMarker) {
		return true
	}
	if s.HashComments && bytes.IndexByte(line, '#') >= 0 {
		return true
	}

	if !s.BlockComments {
		return false
	}
	return bytes.Count(buf[:pos], blockOpen) != bytes.Count(buf[:pos], blockClose)
}

// skipString returns the offset just past the string literal opening at pos.
// Backslash escapes are honoured. An unterminated string runs to len(buf).
func skipString(buf []byte, pos int) int {
	quote := buf[pos]
	for i := pos + 1; i < len(buf); i++ {
		switch buf[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(buf)
}
