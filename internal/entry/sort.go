package entry

import (
	"fmt"
	"sort"
)

// SortKey selects the secondary ordering applied after directories-first.
type SortKey int

const (
	SortByTime SortKey = iota
	SortBySize
	SortByName
)

func (k SortKey) String() string {
	switch k {
	case SortBySize:
		return "size"
	case SortByName:
		return "name"
	default:
		return "time"
	}
}

// ParseSortKey maps "time", "size" or "name" to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "", "time", "mtime":
		return SortByTime, nil
	case "size":
		return SortBySize, nil
	case "name":
		return SortByName, nil
	}
	return SortByTime, fmt.Errorf("invalid sort key %q (expected time|size|name)", s)
}

// SortOptions configures Sort.
type SortOptions struct {
	Key     SortKey
	Reverse bool
}

// Sort orders entries in place. Directories always come first; Reverse only
// flips the secondary comparison. Size ordering applies to non-directories,
// directory pairs fall back to modification time.
func Sort(entries []*Entry, opts SortOptions) {
	sort.SliceStable(entries, func(i, j int) bool {
		return compare(entries[i], entries[j], opts) < 0
	})
}

func compare(a, b *Entry, opts SortOptions) int {
	if a.IsDir != b.IsDir {
		if a.IsDir {
			return -1
		}
		return 1
	}

	var result int
	switch {
	case opts.Key == SortByName:
		result = compareStrings(a.Name, b.Name)
	case opts.Key == SortBySize && !a.IsDir:
		result = compareDesc(a.Size, b.Size)
	default:
		result = compareDesc(a.ModTime.UnixNano(), b.ModTime.UnixNano())
	}

	if opts.Reverse {
		result = -result
	}
	return result
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
