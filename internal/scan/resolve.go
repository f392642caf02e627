package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/michaelscutari/lsp/internal/entry"
)

// Resolve stats name relative to d without following symlinks and returns a
// fully populated record. A stat failure returns no record.
func Resolve(d *Dir, name string, showInode bool) (*entry.Entry, error) {
	var st unix.Stat_t
	if err := d.lstat(name, &st); err != nil {
		return nil, &os.PathError{Op: "lstat", Path: d.join(name), Err: err}
	}

	mode := fileMode(uint32(st.Mode))
	e := &entry.Entry{
		Name:      name,
		FullPath:  d.join(name),
		Kind:      entry.KindFromMode(mode),
		Mode:      mode,
		UID:       st.Uid,
		GID:       st.Gid,
		Size:      st.Size,
		ModTime:   time.Unix(st.Mtim.Unix()),
		IsDir:     mode.IsDir(),
		IsSymlink: mode&fs.ModeSymlink != 0,
	}
	if showInode {
		e.Inode = uint64(st.Ino)
		e.Nlink = uint64(st.Nlink)
	}

	switch {
	case e.IsSymlink:
		e.LinkTarget, e.TargetMode = resolveLink(d, name)
	case e.IsDir:
		e.Size = DirSize(e.FullPath)
	}

	return e, nil
}

// resolveLink reads the link text and classifies what it points at.
// Unreadable and dangling links both yield the sentinel target.
func resolveLink(d *Dir, name string) (string, fs.FileMode) {
	target, err := d.readlink(name)
	if err != nil || target == "" {
		return entry.LinkUnreadable, 0
	}
	var st unix.Stat_t
	if err := d.stat(name, &st); err != nil {
		return entry.LinkUnreadable, 0
	}
	return target, fileMode(uint32(st.Mode))
}

// DirSize sums the sizes of all non-directory descendants of path.
// Unreadable subdirectories and vanished entries contribute zero.
func DirSize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		total += descendantSize(p, d)
		return nil
	})
	return total
}

func descendantSize(p string, d fs.DirEntry) int64 {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return 0
		}
		return info.Size()
	}
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.Size()
}

// fileMode converts raw st_mode bits into an fs.FileMode.
func fileMode(m uint32) fs.FileMode {
	mode := fs.FileMode(m & 0777)
	switch m & unix.S_IFMT {
	case unix.S_IFBLK:
		mode |= fs.ModeDevice
	case unix.S_IFCHR:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case unix.S_IFDIR:
		mode |= fs.ModeDir
	case unix.S_IFIFO:
		mode |= fs.ModeNamedPipe
	case unix.S_IFLNK:
		mode |= fs.ModeSymlink
	case unix.S_IFSOCK:
		mode |= fs.ModeSocket
	}
	if m&unix.S_ISGID != 0 {
		mode |= fs.ModeSetgid
	}
	if m&unix.S_ISUID != 0 {
		mode |= fs.ModeSetuid
	}
	if m&unix.S_ISVTX != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}
