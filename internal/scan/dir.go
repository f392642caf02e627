package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// maxLinkLen bounds readlink; longer targets are truncated.
const maxLinkLen = 4096

// Dir is an open directory handle. Every job of a listing stats relative to
// the same descriptor, so the handle is shared read-only across workers.
type Dir struct {
	Path string
	fd   int
	f    *os.File
}

// OpenDir opens path for enumeration and fd-relative stats.
func OpenDir(path string) (*Dir, error) {
	for {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, &os.PathError{Op: "open", Path: path, Err: err}
		}
		return &Dir{Path: path, fd: fd, f: os.NewFile(uintptr(fd), path)}, nil
	}
}

// Close releases the descriptor.
func (d *Dir) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	if err := d.f.Close(); err != nil {
		return fmt.Errorf("close dir: %w", err)
	}
	d.f = nil
	return nil
}

// Names returns every entry name in byte order, excluding "." and "..".
func (d *Dir) Names() ([]string, error) {
	names, err := d.f.Readdirnames(-1)
	if err != nil {
		return nil, &os.PathError{Op: "readdir", Path: d.Path, Err: err}
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) join(name string) string {
	return filepath.Join(d.Path, name)
}

func (d *Dir) lstat(name string, st *unix.Stat_t) error {
	return d.fstatat(name, st, unix.AT_SYMLINK_NOFOLLOW)
}

func (d *Dir) stat(name string, st *unix.Stat_t) error {
	return d.fstatat(name, st, 0)
}

func (d *Dir) fstatat(name string, st *unix.Stat_t, flags int) error {
	for {
		err := unix.Fstatat(d.fd, name, st, flags)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

func (d *Dir) readlink(name string) (string, error) {
	buf := make([]byte, maxLinkLen)
	for {
		n, err := unix.Readlinkat(d.fd, name, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return "", err
		}
		return string(buf[:n]), nil
	}
}
