package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-doctools/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "valid extension html", extension: "html"},
		{name: "valid extension jpg", extension: "jpg"},
		{name: "empty extension", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash path traversal", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash path traversal", extension: "..\\windows", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte injection", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temporary file creation and cleanup
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<table></table>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.Contains(filepath.Base(path), "doctools-") {
		t.Errorf("path %q does not contain prefix 'doctools-'", path)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path %q does not have extension .html", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}
	if string(data) != "<table></table>" {
		t.Errorf("file content = %q, want %q", data, "<table></table>")
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup: %s", path)
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, _, err := fileutil.WriteTempFile("x", "")
	if !errors.Is(err, fileutil.ErrExtensionEmpty) {
		t.Errorf("WriteTempFile() error = %v, want ErrExtensionEmpty", err)
	}
}

// ---------------------------------------------------------------------------
// TestMakeTempDir - Scoped temporary directories
// ---------------------------------------------------------------------------

func TestMakeTempDir(t *testing.T) {
	t.Parallel()

	dir, cleanup, err := fileutil.MakeTempDir("slide")
	if err != nil {
		t.Fatalf("MakeTempDir() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(dir), "doctools-slide-") {
		t.Errorf("dir %q does not start with doctools-slide-", dir)
	}

	if err := os.WriteFile(filepath.Join(dir, "slide_0001.jpg"), []byte("x"), 0o600); err != nil {
		t.Fatalf("writing into temp dir: %v", err)
	}

	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp dir still exists after cleanup: %s", dir)
	}
}

func TestMakeTempDir_RejectsSeparators(t *testing.T) {
	t.Parallel()

	if _, _, err := fileutil.MakeTempDir("../escape"); err == nil {
		t.Error("MakeTempDir() with separator should fail")
	}
}

// ---------------------------------------------------------------------------
// TestEnsureParentDir - Parent directory creation
// ---------------------------------------------------------------------------

func TestEnsureParentDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "file.png")

	if err := fileutil.EnsureParentDir(target); err != nil {
		t.Fatalf("EnsureParentDir() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(root, "a", "b"))
	if err != nil {
		t.Fatalf("parent dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("parent path is not a directory")
	}
}

func TestEnsureParentDir_BareFilename(t *testing.T) {
	t.Parallel()

	if err := fileutil.EnsureParentDir("file.png"); err != nil {
		t.Errorf("EnsureParentDir(bare name) error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - Regular file detection
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(file, []byte("# doc"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "missing.md"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasExtension / TestIsURL / TestIsFilePath / TestIsCSS - String helpers
// ---------------------------------------------------------------------------

func TestHasExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{path: "photo.PNG", exts: []string{".png"}, want: true},
		{path: "photo.jpeg", exts: []string{".png", ".jpeg"}, want: true},
		{path: "notes.md", exts: []string{".png"}, want: false},
		{path: "noext", exts: []string{".png"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.HasExtension(tt.path, tt.exts...); got != tt.want {
				t.Errorf("HasExtension(%q, %v) = %v, want %v", tt.path, tt.exts, got, tt.want)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "http://example.com/x.png", want: true},
		{in: "HTTPS://example.com", want: true},
		{in: "ftp://example.com", want: false},
		{in: "images/x.png", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsURL(tt.in); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsFilePathAndIsCSS(t *testing.T) {
	t.Parallel()

	if !fileutil.IsFilePath("./table.css") {
		t.Error("IsFilePath(./table.css) = false, want true")
	}
	if fileutil.IsFilePath("compact") {
		t.Error("IsFilePath(compact) = true, want false")
	}
	if !fileutil.IsCSS("table { border: 0 }") {
		t.Error("IsCSS(rule) = false, want true")
	}
	if fileutil.IsCSS("compact") {
		t.Error("IsCSS(compact) = true, want false")
	}
}
