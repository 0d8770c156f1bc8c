package fileutil_test

// Notes:
// - Rename failures inside WriteAtomic depend on the filesystem and are
//   not provoked; the unwritable directory case covers the error path.
//   A failed final rename puts the dst~ backup back in place.
// - File modes are not checked on Windows.

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/alnah/go-makdo/internal/fileutil"
)

func write(t *testing.T, p, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func content(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

// ---------------------------------------------------------------------------
// TestCheckNewer - Destination age
// ---------------------------------------------------------------------------

func TestCheckNewer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	src := filepath.Join(dir, "a.md")
	write(t, src, "本文", old)

	tests := []struct {
		name    string
		dst     func() string
		wantErr error
	}{
		{"missing destination", func() string { return filepath.Join(dir, "none.docx") }, nil},
		{"older destination", func() string {
			p := filepath.Join(dir, "old.docx")
			write(t, p, "x", old.Add(-time.Hour))
			return p
		}, nil},
		{"newer destination", func() string {
			p := filepath.Join(dir, "new.docx")
			write(t, p, "x", time.Now())
			return p
		}, fileutil.ErrDestinationNewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fileutil.CheckNewer(src, tt.dst())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckNewer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteAtomic - Temp file, backup and rename
// ---------------------------------------------------------------------------

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dst := filepath.Join(dir, "sub", "out.md")

	if err := fileutil.WriteAtomic(dst, content("first")); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}
	if got := read(t, dst); got != "first" {
		t.Errorf("content = %q, want first", got)
	}
	if fileutil.FileExists(dst + fileutil.BackupSuffix) {
		t.Error("backup written for a new file")
	}

	if err := fileutil.WriteAtomic(dst, content("second")); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}
	if got := read(t, dst); got != "second" {
		t.Errorf("content = %q, want second", got)
	}
	if got := read(t, dst+"~"); got != "first" {
		t.Errorf("backup = %q, want first", got)
	}
}

func TestWriteAtomic_Mode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("no POSIX modes")
	}
	dst := filepath.Join(t.TempDir(), "out.md")
	if err := fileutil.WriteAtomic(dst, content("x")); err != nil {
		t.Fatalf("WriteAtomic() error = %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("mode = %o, want 644", got)
	}
}

func TestWriteAtomic_WriterError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dst := filepath.Join(dir, "out.md")
	write(t, dst, "keep", time.Now())

	errBoom := errors.New("boom")
	err := fileutil.WriteAtomic(dst, func(io.Writer) error { return errBoom })
	if !errors.Is(err, errBoom) {
		t.Fatalf("WriteAtomic() error = %v, want boom", err)
	}
	if got := read(t, dst); got != "keep" {
		t.Errorf("destination changed to %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the destination", len(entries))
	}
}

func TestWriteAtomic_Unwritable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	write(t, blocker, "x", time.Now())

	err := fileutil.WriteAtomic(filepath.Join(blocker, "out.md"), content("x"))
	if !errors.Is(err, fileutil.ErrDestinationUnwritable) {
		t.Errorf("WriteAtomic() error = %v, want ErrDestinationUnwritable", err)
	}
}

// ---------------------------------------------------------------------------
// TestMediaDir / TestWriteMedia
// ---------------------------------------------------------------------------

func TestMediaDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"doc.md", "doc"},
		{filepath.Join("a", "契約書.md"), filepath.Join("a", "契約書")},
		{"notes.markdown", "notes.markdown.dir"},
		{"README", "README.dir"},
	}

	for _, tt := range tests {
		if got := fileutil.MediaDir(tt.in); got != tt.want {
			t.Errorf("MediaDir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteMedia(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "doc")
	if err := fileutil.WriteMedia(dir, nil); err != nil {
		t.Fatalf("WriteMedia(nil) error = %v", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Error("WriteMedia(nil) created the directory")
	}

	if err := fileutil.WriteMedia(dir, map[string][]byte{"image1.png": []byte("png")}); err != nil {
		t.Fatalf("WriteMedia() error = %v", err)
	}
	if got := read(t, filepath.Join(dir, "image1.png")); got != "png" {
		t.Errorf("media = %q", got)
	}

	err := fileutil.WriteMedia(dir, map[string][]byte{"../evil.png": nil})
	if !errors.Is(err, fileutil.ErrUnsafeMediaName) {
		t.Errorf("WriteMedia() error = %v, want ErrUnsafeMediaName", err)
	}
}

func TestReplaceExt(t *testing.T) {
	t.Parallel()

	if got := fileutil.ReplaceExt(filepath.Join("d", "a.md"), ".docx"); got != filepath.Join("d", "a.docx") {
		t.Errorf("ReplaceExt() = %q", got)
	}
	if got := fileutil.ReplaceExt("a", ".md"); got != "a.md" {
		t.Errorf("ReplaceExt() = %q", got)
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{"legal": false, "./legal.yaml": true, `C:\cfg.yaml`: true} {
		if got := fileutil.IsFilePath(in); got != want {
			t.Errorf("IsFilePath(%q) = %v, want %v", in, got, want)
		}
	}
}
