// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"fmt"

	"github.com/confreg/confreg/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// CUEEvaluator evaluates top-level list and struct fields of a CUE file.
// Lists yield plain items, structs yield keyed items in declaration order.
type CUEEvaluator struct {
	// Filename is used in error messages only.
	Filename string
}

// Evaluate implements Evaluator.
func (e CUEEvaluator) Evaluate(src []byte, key string) ([]Item, error) {
	filename := e.Filename
	if filename == "" {
		filename = "<input>"
	}
	if err := cueutil.CheckFileSize(src, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	root := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	if root.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, cueutil.FormatError(root.Err(), filename))
	}

	v := root.LookupPath(cue.MakePath(cue.Str(key)))
	if !v.Exists() {
		return nil, fmt.Errorf("%q: %w", key, ErrKeyMissing)
	}

	switch v.IncompleteKind() {
	case cue.ListKind:
		return cueListItems(v, filename)
	case cue.StructKind:
		return cueStructItems(v, filename)
	default:
		return nil, fmt.Errorf("%q: %w", key, ErrNotArray)
	}
}

func cueListItems(v cue.Value, filename string) ([]Item, error) {
	it, err := v.List()
	if err != nil {
		return nil, cueutil.FormatError(err, filename)
	}
	var items []Item
	for it.Next() {
		items = append(items, Item{Value: cueText(it.Value())})
	}
	return items, nil
}

func cueStructItems(v cue.Value, filename string) ([]Item, error) {
	it, err := v.Fields()
	if err != nil {
		return nil, cueutil.FormatError(err, filename)
	}
	var items []Item
	for it.Next() {
		sel := it.Selector()
		label := sel.String()
		if sel.IsString() {
			label = sel.Unquoted()
		}
		items = append(items, Item{Key: label, Value: cueText(it.Value()), Keyed: true})
	}
	return items, nil
}

func cueText(v cue.Value) string {
	if s, err := v.String(); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
