// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// ErrInjected is returned by FailingFs for every operation it was told to fail.
var ErrInjected = errors.New("injected failure")

// MemFs returns an in-memory filesystem holding files, keyed by path.
func MemFs(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		MustWriteFile(t, fs, path, content)
	}
	return fs
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustReadFile returns the content of path.
func MustReadFile(t testing.TB, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// MustNotExist fails the test when path exists.
func MustNotExist(t testing.TB, fs afero.Fs, path string) {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	if ok {
		t.Fatalf("%s should not exist", path)
	}
}

// FailingFs wraps an afero.Fs and fails Rename or Remove on request.
type FailingFs struct {
	afero.Fs

	FailRename bool
	FailRemove bool
	// Renames counts Rename calls, failed ones included.
	Renames int
}

// Rename implements afero.Fs.
func (f *FailingFs) Rename(oldname, newname string) error {
	f.Renames++
	if f.FailRename {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrInjected}
	}
	return f.Fs.Rename(oldname, newname)
}

// Remove implements afero.Fs.
func (f *FailingFs) Remove(name string) error {
	if f.FailRemove {
		return &os.PathError{Op: "remove", Path: name, Err: ErrInjected}
	}
	return f.Fs.Remove(name)
}

// MustMkdirAll creates dir and its parents.
func MustMkdirAll(t testing.TB, fs afero.Fs, dir string) {
	t.Helper()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
}
