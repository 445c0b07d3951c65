// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrKeyMissing is returned when the requested key does not exist in the file.
	ErrKeyMissing = errors.New("key not present")
	// ErrNotArray is returned when the key exists but its value is not an array literal.
	ErrNotArray = errors.New("value is not an array literal")
	// ErrSyntax is the sentinel wrapped by SyntaxError.
	ErrSyntax = errors.New("syntax error")
)

type (
	// Item is one entry of an evaluated literal. List entries carry only a Value;
	// map entries also carry a Key and have Keyed set.
	Item struct {
		Key   string
		Value string
		Keyed bool
	}

	// Evaluator returns the ordered items held by key in src.
	Evaluator interface {
		Evaluate(src []byte, key string) ([]Item, error)
	}

	// SyntaxError reports malformed source at a byte offset.
	SyntaxError struct {
		Offset int
		Msg    string
	}
)

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// Unwrap returns ErrSyntax for errors.Is() compatibility.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// String renders the item the way it would appear in a listing.
func (i Item) String() string {
	if i.Keyed {
		return i.Key + " => " + i.Value
	}
	return i.Value
}

// Values returns the Value of every item, in order.
func Values(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Value)
	}
	return out
}

// Contains reports whether any item has exactly the given value.
func Contains(items []Item, value string) bool {
	for _, it := range items {
		if it.Value == value {
			return true
		}
	}
	return false
}

// Lookup returns the value mapped to key. When a key appears more than once the
// last occurrence wins, matching how the host language builds the array.
func Lookup(items []Item, key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, it := range items {
		if it.Keyed && it.Key == key {
			value = it.Value
			found = true
		}
	}
	return value, found
}

// ForPath picks the evaluator matching the file extension of path.
// Files other than .cue are treated as PHP.
func ForPath(path string) Evaluator {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return CUEEvaluator{Filename: filepath.Base(path)}
	}
	return PHPEvaluator{}
}
