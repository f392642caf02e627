package render

import (
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	month = 30 * humanize.Day
	year  = 365 * humanize.Day
)

var ageMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "%ds %s", DivBy: time.Second},
	{D: time.Hour, Format: "%dm %s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%dh %s", DivBy: time.Hour},
	{D: month, Format: "%dd %s", DivBy: humanize.Day},
	{D: year, Format: "%dmo %s", DivBy: month},
	{D: math.MaxInt64, Format: "%dy %s", DivBy: year},
}

// Age formats the time since mtime in compact form, e.g. "5m ago".
func Age(mtime, now time.Time) string {
	return humanize.CustomRelTime(mtime, now, "ago", "from now", ageMagnitudes)
}

// Size formats a byte count with binary units.
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// Permissions renders mode as a ten character string such as "drwxr-xr-x".
func Permissions(mode fs.FileMode) string {
	var b strings.Builder
	b.Grow(10)

	switch {
	case mode&fs.ModeDir != 0:
		b.WriteByte('d')
	case mode&fs.ModeSymlink != 0:
		b.WriteByte('l')
	case mode&fs.ModeCharDevice != 0:
		b.WriteByte('c')
	case mode&fs.ModeDevice != 0:
		b.WriteByte('b')
	case mode&fs.ModeNamedPipe != 0:
		b.WriteByte('p')
	case mode&fs.ModeSocket != 0:
		b.WriteByte('s')
	default:
		b.WriteByte('-')
	}

	const rwx = "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			b.WriteByte(rwx[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
