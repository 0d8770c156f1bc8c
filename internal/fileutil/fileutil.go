// Package fileutil writes conversion results safely: it refuses to clobber
// newer files, keeps a "~" backup of the previous output and renames a
// finished temp file into place.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrDestinationNewer      = errors.New("destination is newer than source")
	ErrDestinationUnwritable = errors.New("destination is not writable")
	ErrUnsafeMediaName       = errors.New("media name escapes its directory")
)

// BackupSuffix is appended to the previous output when it is replaced.
const BackupSuffix = "~"

// CheckNewer returns ErrDestinationNewer when dst exists and was modified
// after src. A missing dst is fine.
func CheckNewer(src, dst string) error {
	di, err := os.Stat(dst)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationUnwritable, err)
	}
	si, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if di.ModTime().After(si.ModTime()) {
		return fmt.Errorf("%w: %s", ErrDestinationNewer, dst)
	}
	return nil
}

// WriteAtomic writes dst through write. The content goes to a temp file in
// the destination directory first; an existing dst is renamed to dst~ and
// the temp file is renamed over dst. On error dst is untouched.
func WriteAtomic(dst string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationUnwritable, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationUnwritable, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", ErrDestinationUnwritable, err)
	}
	// #nosec G302 -- converted documents are meant to be readable
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationUnwritable, err)
	}

	backedUp := false
	if FileExists(dst) {
		if err := os.Rename(dst, dst+BackupSuffix); err != nil {
			return fmt.Errorf("%w: backup: %v", ErrDestinationUnwritable, err)
		}
		backedUp = true
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		if backedUp {
			_ = os.Rename(dst+BackupSuffix, dst)
		}
		return fmt.Errorf("%w: %v", ErrDestinationUnwritable, err)
	}
	return nil
}

// MediaDir returns the directory holding the images of a Markdown file:
// "doc.md" uses "doc", any other name gets ".dir" appended.
func MediaDir(mdPath string) string {
	if base, ok := strings.CutSuffix(mdPath, ".md"); ok && filepath.Base(mdPath) != ".md" {
		return base
	}
	return mdPath + ".dir"
}

// WriteMedia stores media files under dir, creating it when there is
// anything to write. Names must stay inside dir.
func WriteMedia(dir string, media map[string][]byte) error {
	if len(media) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationUnwritable, err)
	}
	for _, name := range slices.Sorted(maps.Keys(media)) {
		if !filepath.IsLocal(name) {
			return fmt.Errorf("%w: %q", ErrUnsafeMediaName, name)
		}
		p := filepath.Join(dir, name)
		data := media[name]
		if err := WriteAtomic(p, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceExt swaps the extension of path for ext (with its dot).
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
