// SPDX-License-Identifier: MPL-2.0

package litedit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// BackupGuard writes files so that an interrupted or failed write leaves a
// copy of the previous content next to the original.
type BackupGuard struct {
	Fs afero.Fs
}

// NewBackupGuard returns a guard over fs, or over the OS filesystem when fs
// is nil.
func NewBackupGuard(fs afero.Fs) *BackupGuard {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &BackupGuard{Fs: fs}
}

// BackupPath returns the backup location for path: app.php becomes app.bak.php.
func BackupPath(path string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".bak"+ext)
}

// Write replaces the content of path with data.
//
// The original is copied to BackupPath(path) first. The new content goes to a
// temporary sibling that is renamed over path. On failure the backup stays and
// ErrWriteFailure is returned; on success the backup is removed.
func (g *BackupGuard) Write(path string, data []byte) error {
	bak := BackupPath(path)
	pending, err := g.Pending(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	if pending {
		return fmt.Errorf("%s: %w", bak, ErrBackupPresent)
	}

	info, err := g.Fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	perm := info.Mode().Perm()

	if err := g.copyFile(path, bak); err != nil {
		_ = g.Fs.Remove(bak)
		return fmt.Errorf("%w: backup: %w", ErrWriteFailure, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(g.Fs, tmp, data, perm); err != nil {
		_ = g.Fs.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	if err := g.Fs.Rename(tmp, path); err != nil {
		_ = g.Fs.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	if err := g.Fs.Remove(bak); err != nil {
		return fmt.Errorf("%w: %w", ErrCleanupFailed, err)
	}
	return nil
}

// Pending reports whether a backup for path exists.
func (g *BackupGuard) Pending(path string) (bool, error) {
	return afero.Exists(g.Fs, BackupPath(path))
}

// Restore copies the backup over path and removes it.
func (g *BackupGuard) Restore(path string) error {
	bak := BackupPath(path)
	if err := g.copyFile(bak, path); err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	if err := g.Fs.Remove(bak); err != nil {
		return fmt.Errorf("%w: %w", ErrCleanupFailed, err)
	}
	return nil
}

// Discard removes the backup and keeps path as it is.
func (g *BackupGuard) Discard(path string) error {
	if err := g.Fs.Remove(BackupPath(path)); err != nil {
		return fmt.Errorf("%w: %w", ErrCleanupFailed, err)
	}
	return nil
}

func (g *BackupGuard) copyFile(src, dst string) error {
	info, err := g.Fs.Stat(src)
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(g.Fs, src)
	if err != nil {
		return err
	}
	return afero.WriteFile(g.Fs, dst, data, info.Mode().Perm())
}
