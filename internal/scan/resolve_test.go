package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/michaelscutari/lsp/internal/entry"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func openTestDir(t *testing.T, path string) *Dir {
	t.Helper()
	d, err := OpenDir(path)
	if err != nil {
		t.Fatalf("open dir: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDirSizeSumsDescendants(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tree", "ten.txt"), 10)
	writeFile(t, filepath.Join(root, "tree", "sub", "twenty.txt"), 20)

	if got := DirSize(filepath.Join(root, "tree")); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}

	d := openTestDir(t, root)
	e, err := Resolve(d, "tree", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !e.IsDir || e.Kind != entry.KindDir {
		t.Fatalf("expected directory record, got %+v", e)
	}
	if e.Size != 30 {
		t.Fatalf("expected directory size 30, got %d", e.Size)
	}
}

func TestDirSizeUnreadableSubdirContributesZero(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 7)
	writeFile(t, filepath.Join(root, "locked", "hidden.txt"), 100)

	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	if got := DirSize(root); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestDirSizeSkipsDanglingAndDirectoryLinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), 4)
	writeFile(t, filepath.Join(root, "other", "g"), 50)
	os.Symlink("missing", filepath.Join(root, "dangling"))
	os.Symlink(filepath.Join(root, "other"), filepath.Join(root, "dirlink"))
	os.Symlink("f", filepath.Join(root, "filelink"))

	// f (4) + other/g (50) + filelink -> f (4)
	if got := DirSize(root); got != 58 {
		t.Fatalf("expected 58, got %d", got)
	}
}

func TestResolveRegularFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data.bin"), 123)
	os.Chmod(filepath.Join(root, "data.bin"), 0750)

	d := openTestDir(t, root)
	e, err := Resolve(d, "data.bin", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.Name != "data.bin" || e.FullPath != filepath.Join(root, "data.bin") {
		t.Fatalf("unexpected names: %+v", e)
	}
	if e.Size != 123 || e.IsDir || e.IsSymlink || e.LinkTarget != "" {
		t.Fatalf("unexpected record: %+v", e)
	}
	if e.Mode.Perm() != 0750 || !e.IsExecutable() {
		t.Fatalf("unexpected mode %v", e.Mode)
	}
	if e.Inode == 0 || e.Nlink != 1 {
		t.Fatalf("expected inode and link count, got inode=%d nlink=%d", e.Inode, e.Nlink)
	}

	info, err := os.Lstat(filepath.Join(root, "data.bin"))
	if err != nil {
		t.Fatalf("lstat: %v", err)
	}
	if !e.ModTime.Equal(info.ModTime()) {
		t.Fatalf("mtime mismatch: %v vs %v", e.ModTime, info.ModTime())
	}
	if e.Mode != info.Mode() {
		t.Fatalf("mode mismatch: %v vs %v", e.Mode, info.Mode())
	}
}

func TestResolveInodeOnlyWhenRequested(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), 1)

	d := openTestDir(t, root)
	e, err := Resolve(d, "f", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.Inode != 0 || e.Nlink != 0 {
		t.Fatalf("inode fields populated without request: %+v", e)
	}
}

func TestResolveDanglingSymlink(t *testing.T) {
	root := t.TempDir()
	if err := os.Symlink(filepath.Join(root, "nowhere"), filepath.Join(root, "broken")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	d := openTestDir(t, root)
	e, err := Resolve(d, "broken", false)
	if err != nil {
		t.Fatalf("dangling link must still produce a record: %v", err)
	}
	if !e.IsSymlink || e.Kind != entry.KindSymlink {
		t.Fatalf("expected symlink record, got %+v", e)
	}
	if e.LinkTarget != entry.LinkUnreadable {
		t.Fatalf("expected %q target, got %q", entry.LinkUnreadable, e.LinkTarget)
	}
	if e.TargetMode != 0 {
		t.Fatalf("dangling link must have no target mode, got %v", e.TargetMode)
	}
}

func TestResolveSymlinkKeepsOwnSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "big"), 4096)
	if err := os.Symlink("sub", filepath.Join(root, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	d := openTestDir(t, root)
	e, err := Resolve(d, "link", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.LinkTarget != "sub" {
		t.Fatalf("expected target sub, got %q", e.LinkTarget)
	}
	if !e.TargetMode.IsDir() {
		t.Fatalf("expected directory target mode, got %v", e.TargetMode)
	}
	if e.IsDir {
		t.Fatalf("symlink must not be treated as a directory")
	}
	if e.Size != int64(len("sub")) {
		t.Fatalf("expected link size %d, got %d", len("sub"), e.Size)
	}
}

func TestResolveMissingEntryFails(t *testing.T) {
	root := t.TempDir()
	d := openTestDir(t, root)
	e, err := Resolve(d, "ghost", false)
	if err == nil || e != nil {
		t.Fatalf("expected failure for missing entry, got %+v, %v", e, err)
	}
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestOpenDirRejectsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), 1)
	if _, err := OpenDir(filepath.Join(root, "f")); err == nil {
		t.Fatalf("expected error opening a regular file as directory")
	}
}

func TestDirNamesSorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c", "a", ".b", "B"} {
		writeFile(t, filepath.Join(root, name), 1)
	}
	d := openTestDir(t, root)
	names, err := d.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	want := []string{".b", "B", "a", "c"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, names)
	}
}
