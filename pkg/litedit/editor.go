// SPDX-License-Identifier: MPL-2.0

package litedit

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/confreg/confreg/pkg/literal"
)

type (
	// Editor edits the literals of a single file.
	Editor struct {
		path    string
		fs      afero.Fs
		dialect Dialect
		sniffer StyleSniffer
		guard   *BackupGuard
		logger  *log.Logger
		dryRun  bool
	}

	// Option configures an Editor.
	Option func(*Editor)
)

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *Editor) { e.fs = fs }
}

// WithDialect overrides the dialect picked from the file extension.
func WithDialect(d Dialect) Option {
	return func(e *Editor) { e.dialect = d }
}

// WithDefaultSeparator sets the separator used when none can be sniffed.
func WithDefaultSeparator(sep string) Option {
	return func(e *Editor) { e.sniffer.DefaultSeparator = sep }
}

// WithDefaultQuote sets the quote used when a literal has no majority.
func WithDefaultQuote(q byte) Option {
	return func(e *Editor) { e.sniffer.DefaultQuote = q }
}

// WithLogger sets the logger for edit transitions and degraded lookups.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithDryRun makes the editor compute edits without writing them.
func WithDryRun(dryRun bool) Option {
	return func(e *Editor) { e.dryRun = dryRun }
}

// New returns an editor for path.
func New(path string, opts ...Option) *Editor {
	e := &Editor{
		path:    path,
		dialect: DialectFor(path),
		sniffer: StyleSniffer{DefaultSeparator: DefaultSeparator, DefaultQuote: '\''},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	e.sniffer.Dialect = e.dialect
	e.sniffer.Logger = e.logger
	e.guard = NewBackupGuard(e.fs)
	return e
}

// Path returns the edited file.
func (e *Editor) Path() string { return e.path }

// Guard returns the backup guard used for writes.
func (e *Editor) Guard() *BackupGuard { return e.guard }

// Items returns the current live items of key.
func (e *Editor) Items(key string) ([]literal.Item, error) {
	buf, err := e.read("items", key)
	if err != nil {
		return nil, err
	}
	items, err := e.dialect.Evaluator.Evaluate(buf, key)
	if err != nil {
		return nil, e.fail("items", key, errors.Join(ErrLoadFailure, err))
	}
	return items, nil
}

// AddItem appends value to the literal of key unless it is already present.
// It reports whether the file changed.
func (e *Editor) AddItem(key, value string) (bool, error) {
	buf, err := e.read("add", key)
	if err != nil {
		return false, err
	}
	items, err := e.currentItems("add", buf, key)
	if err != nil {
		return false, err
	}
	if literal.Contains(items, value) {
		e.logger.Debug("item already present", "key", key, "value", value)
		return false, nil
	}
	return e.insert("add", buf, key, func(q byte) string {
		return e.dialect.QuoteString(q, value)
	})
}

// AddKeyedItem adds itemKey => itemValue to the literal of key. An existing
// entry for itemKey with a different value is disabled in the same write, so
// a failed insert leaves the old entry live.
func (e *Editor) AddKeyedItem(key, itemKey, itemValue string) (bool, error) {
	buf, err := e.read("add", key)
	if err != nil {
		return false, err
	}
	items, err := e.currentItems("add", buf, key)
	if err != nil {
		return false, err
	}
	if current, ok := literal.Lookup(items, itemKey); ok {
		if current == itemValue {
			e.logger.Debug("entry already present", "key", key, "item", itemKey)
			return false, nil
		}
		b, err := e.dialect.Locate(buf, key)
		if err != nil {
			return false, e.fail("add", key, err)
		}
		var n int
		buf, n = e.disableIn(buf, b, itemKey)
		e.logger.Info("replacing entry", "key", key, "item", itemKey, "old", current, "new", itemValue, "disabled", n)
	}
	return e.insert("add", buf, key, func(q byte) string {
		return e.dialect.QuoteString(q, itemKey) + e.dialect.PairOperator + e.dialect.QuoteString(q, itemValue)
	})
}

func (e *Editor) insert(op string, buf []byte, key string, render func(q byte) string) (bool, error) {
	b, err := e.dialect.Locate(buf, key)
	if err != nil {
		return false, e.fail(op, key, err)
	}
	e.logger.Debug("bounds located", "key", key, "start", b.Start, "end", b.End)

	style := e.sniffer.Profile(buf, key, b)
	e.logger.Debug("style inferred", "key", key, "quote", string(style.Quote), "separator", fmt.Sprintf("%q", style.Separator))

	anchor, err := e.dialect.FindAnchor(buf, b)
	if err != nil {
		return false, e.fail(op, key, err)
	}
	e.logger.Debug("anchor found", "key", key, "position", anchor.Position, "after", string(anchor.Matched))

	fragment := style.Separator + render(style.Quote) + ","
	if anchor.stripsSeparator() {
		fragment = strings.TrimLeft(fragment, ",")
	}

	out := make([]byte, 0, len(buf)+len(fragment))
	out = append(out, buf[:anchor.Position]...)
	out = append(out, fragment...)
	out = append(out, buf[anchor.Position:]...)

	if err := e.write(op, key, out); err != nil {
		return false, err
	}
	return true, nil
}

// currentItems evaluates key. A key holding something other than a literal
// aborts the edit; any other evaluation failure is treated as an empty
// literal.
func (e *Editor) currentItems(op string, buf []byte, key string) ([]literal.Item, error) {
	items, err := e.dialect.Evaluator.Evaluate(buf, key)
	switch {
	case err == nil:
		return items, nil
	case errors.Is(err, literal.ErrNotArray):
		return nil, e.fail(op, key, fmt.Errorf("%w: %w", ErrNotLiteral, err))
	default:
		e.logger.Warn("could not evaluate current items", "path", e.path, "key", key, "err", errors.Join(ErrLoadFailure, err))
		return nil, nil
	}
}

func (e *Editor) read(op, key string) ([]byte, error) {
	buf, err := afero.ReadFile(e.fs, e.path)
	if err != nil {
		return nil, e.fail(op, key, err)
	}
	return buf, nil
}

func (e *Editor) write(op, key string, data []byte) error {
	if e.dryRun {
		e.logger.Info("dry run, not writing", "path", e.path, "key", key)
		return nil
	}
	e.logger.Debug("writing with backup", "path", e.path, "backup", BackupPath(e.path))
	if err := e.guard.Write(e.path, data); err != nil {
		return e.fail(op, key, err)
	}
	e.logger.Debug("written, backup removed", "path", e.path)
	return nil
}

func (e *Editor) fail(op, key string, err error) error {
	return &EditError{Op: op, Path: e.path, Key: key, Err: err}
}
