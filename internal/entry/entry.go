package entry

import (
	"io/fs"
	"os"
	"strings"
	"time"
)

// LinkUnreadable is stored as the link target when a symlink could not be
// read or does not resolve.
const LinkUnreadable = "unreadable"

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile    Kind = 0
	KindDir     Kind = 1
	KindSymlink Kind = 2
	KindOther   Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindFromMode derives the Kind from an os.FileMode.
func KindFromMode(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Entry is the resolved metadata for one filesystem object in a listing.
type Entry struct {
	Name     string
	FullPath string
	Kind     Kind
	Mode     fs.FileMode
	UID      uint32
	GID      uint32
	Size     int64 // Recursive total for directories, the link's own size for symlinks
	ModTime  time.Time

	IsDir     bool
	IsSymlink bool

	// Set only for symlinks. TargetMode is zero when the link dangles.
	LinkTarget string
	TargetMode fs.FileMode

	// Populated only when inode display is requested.
	Inode uint64
	Nlink uint64
}

// IsExecutable reports whether any execute bit is set.
func (e *Entry) IsExecutable() bool {
	return e.Mode&0111 != 0
}

// IsCharDevice reports whether the entry is a character device.
func (e *Entry) IsCharDevice() bool {
	return e.Mode&fs.ModeCharDevice != 0
}

// IsBlockDevice reports whether the entry is a block device.
func (e *Entry) IsBlockDevice() bool {
	return e.Mode&fs.ModeDevice != 0 && e.Mode&fs.ModeCharDevice == 0
}

// IsHidden reports whether a directory entry name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
