// SPDX-License-Identifier: MPL-2.0

package litedit

import "fmt"

// Anchor is where new text is spliced into a literal.
type Anchor struct {
	Position int
	// Matched is the character the anchor follows: a quote, a comma, or the
	// opening bracket of an empty literal.
	Matched byte
}

// stripsSeparator reports whether inserted text must drop its leading comma
// because the anchor already follows one, or follows the opening bracket.
func (a Anchor) stripsSeparator() bool {
	switch a.Matched {
	case ',', '(', '[', '{':
		return true
	}
	return false
}

// FindAnchor returns the position after the last uncommented quote or comma in
// the literal. Scanning forward and keeping the last hit puts the anchor after
// the final live item even when commented-out items follow it. A literal with
// no such character past its key gets an anchor just inside its opening bracket.
func (d Dialect) FindAnchor(buf []byte, b Bounds) (Anchor, error) {
	cs := d.scanner()
	a := Anchor{Position: -1}
	for i := b.Start; i <= b.End && i < len(buf); i++ {
		switch c := buf[i]; c {
		case '\'', '"', ',':
			if !cs.InComment(buf, i) {
				a = Anchor{Position: i + 1, Matched: c}
			}
		}
	}

	if a.Position <= b.KeyEnd && b.Open >= 0 {
		return Anchor{Position: b.Open + 1, Matched: buf[b.Open]}, nil
	}
	if a.Position < 0 {
		return Anchor{}, fmt.Errorf("offsets %d-%d: %w", b.Start, b.End, ErrNoInsertionPoint)
	}
	return a, nil
}
