package render

import (
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/owner"
)

// Options controls table output.
type Options struct {
	ShowInode bool
	NoColor   bool
}

// Table writes listings as aligned long-format rows.
type Table struct {
	w      io.Writer
	opts   Options
	styles Styles
	owners *owner.Cache
}

// NewTable creates a table writer on w. A nil cache gets a private one.
func NewTable(w io.Writer, opts Options, owners *owner.Cache) *Table {
	r := lipgloss.NewRenderer(w)
	if opts.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	if owners == nil {
		owners = owner.NewCache(owner.DefaultCacheSize)
	}
	return &Table{
		w:      w,
		opts:   opts,
		styles: NewStyles(r),
		owners: owners,
	}
}

// Styles returns the table's styles.
func (t *Table) Styles() Styles {
	return t.styles
}

// Header writes the "path:" line that precedes a directory when several
// operands are listed.
func (t *Table) Header(path string) error {
	_, err := fmt.Fprintln(t.w, t.styles.Header.Render(path+":"))
	return err
}

// row holds the plain text of each column before styling.
type row struct {
	e     *entry.Entry
	inode string
	nlink string
	perms string
	owner string
	size  string
	age   string
}

// Write renders entries with ages relative to now.
func (t *Table) Write(entries []*entry.Entry, now time.Time) error {
	rows := make([]row, len(entries))
	var wInode, wNlink, wOwner, wSize, wAge int

	for i, e := range entries {
		r := row{
			e:     e,
			perms: Permissions(e.Mode),
			owner: t.owners.User(e.UID) + ":" + t.owners.Group(e.GID),
			size:  Size(e.Size),
			age:   Age(e.ModTime, now),
		}
		if t.opts.ShowInode {
			r.inode = strconv.FormatUint(e.Inode, 10)
			r.nlink = strconv.FormatUint(e.Nlink, 10)
			wInode = max(wInode, len(r.inode))
			wNlink = max(wNlink, len(r.nlink))
		}
		wOwner = max(wOwner, lipgloss.Width(r.owner))
		wSize = max(wSize, len(r.size))
		wAge = max(wAge, len(r.age))
		rows[i] = r
	}

	var b strings.Builder
	for _, r := range rows {
		b.Reset()
		if t.opts.ShowInode {
			b.WriteString(pad(r.inode, wInode))
			b.WriteString("  ")
			b.WriteString(pad(r.nlink, wNlink))
			b.WriteString("  ")
		}
		b.WriteString(r.perms)
		b.WriteString("  ")
		b.WriteString(t.ownerStyle(r.e).Render(pad(r.owner, wOwner)))
		b.WriteString("  ")
		b.WriteString(t.sizeStyle(r.size).Render(pad(r.size, wSize)))
		b.WriteString("  ")
		b.WriteString(t.ageStyle(r.e.ModTime, now).Render(pad(r.age, wAge)))
		b.WriteString("  ")
		b.WriteString(t.Name(r.e))
		if _, err := fmt.Fprintln(t.w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// Name renders the name column: colored by type, with the link target for
// symlinks and a marker for device files.
func (t *Table) Name(e *entry.Entry) string {
	s := t.styles
	switch {
	case e.IsSymlink:
		target := s.LinkTarget
		if e.TargetMode.IsDir() {
			target = s.Dir
		}
		out := s.Symlink.Render(e.Name) + " -> " + target.Render(e.LinkTarget)
		return out + t.deviceMark(e.TargetMode)
	case e.IsDir:
		return s.Dir.Render(e.Name)
	case e.IsExecutable():
		return s.Exec.Render(e.Name)
	default:
		return s.File.Render(e.Name) + t.deviceMark(e.Mode)
	}
}

func (t *Table) deviceMark(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeCharDevice != 0:
		return t.styles.CharMark.Render("*")
	case mode&fs.ModeDevice != 0:
		return t.styles.BlockMark.Render("#")
	}
	return ""
}

func (t *Table) ownerStyle(e *entry.Entry) lipgloss.Style {
	return t.styles.Owner(t.owners.User(e.UID))
}

func (t *Table) sizeStyle(size string) lipgloss.Style {
	switch {
	case strings.HasSuffix(size, " KiB"):
		return t.styles.SizeKiB
	case strings.HasSuffix(size, " MiB"):
		return t.styles.SizeMiB
	case strings.HasSuffix(size, " B"):
		return t.styles.File
	default:
		return t.styles.SizeGiB
	}
}

func (t *Table) ageStyle(mtime, now time.Time) lipgloss.Style {
	switch age := now.Sub(mtime); {
	case age >= year:
		return t.styles.DateYear
	case age >= month:
		return t.styles.DateMonth
	}
	return t.styles.File
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
